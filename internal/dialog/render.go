package dialog

import (
	"fmt"
	"strconv"
	"strings"

	"burovik/internal/catalog"
	"burovik/internal/pricing"
)

// Button is a single inline keyboard button.
type Button struct {
	Text string
	Data string
}

// Render is a transport-agnostic screen: message text plus an inline
// keyboard. The bot layer decides whether to send it as a new message or
// edit the one the user tapped.
type Render struct {
	Text     string
	Keyboard [][]Button
	Markdown bool
}

const (
	textGreeting        = "Добро пожаловать в калькулятор стоимости бурения! Выберите район:"
	textRestart         = "Начинаем заново. Выберите район:"
	textDepthOutOfRange = "Эта глубина недоступна для выбранного района. Выберите глубину из списка:"
	textHelp            = "Пожалуйста, используйте команду /start для начала работы с ботом или /reset для сброса."
)

// HelpRender is the reply for free-text messages the bot does not
// understand.
func HelpRender() *Render {
	return &Render{Text: textHelp}
}

type renderer struct {
	cat *catalog.Catalog
	eng *pricing.Engine
}

func (r renderer) districts() *Render {
	var rows [][]Button
	var row []Button
	for i := range r.cat.Districts {
		row = append(row, Button{Text: r.cat.Districts[i].Name, Data: CallbackDistrict(i)})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return &Render{Text: textGreeting, Keyboard: rows}
}

func (r renderer) depths(st *State) *Render {
	var b strings.Builder
	fmt.Fprintf(&b, "Вы выбрали район: %s.", st.District)
	if d := r.cat.DistrictByName(st.District); d != nil && d.Horizons != nil {
		b.WriteString("\n\nВодоносные горизонты:")
		if h := d.Horizons.PI1; h != nil {
			fmt.Fprintf(&b, "\n- ПИ1: %d–%d м", h.Min, h.Max)
		}
		if h := d.Horizons.PI2; h != nil {
			fmt.Fprintf(&b, "\n- ПИ2: %d–%d м", h.Min, h.Max)
		}
	}
	b.WriteString("\n\nТеперь выберите глубину бурения:")

	var rows [][]Button
	var row []Button
	for _, depth := range sampleDepths(r.cat.DepthBandsFor(st.District)) {
		row = append(row, Button{Text: fmt.Sprintf("%d м", depth), Data: CallbackDepth(depth)})
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return &Render{Text: b.String(), Keyboard: rows}
}

func (r renderer) equipmentSets(st *State) *Render {
	text := fmt.Sprintf(
		"Вы выбрали глубину: %d м\n\nСтоимость бурения: %s руб.\n\nВыберите комплект оборудования или соберите свой:",
		st.Depth, formatPrice(r.eng.DrillingCost(st.Depth)))

	var rows [][]Button
	for i := range r.cat.Sets {
		set := r.cat.Sets[i]
		rows = append(rows, []Button{{
			Text: fmt.Sprintf("%s — %s руб.", set.Name, formatPrice(set.Total())),
			Data: CallbackSet(i),
		}})
	}
	rows = append(rows, []Button{{Text: "Собрать свой комплект", Data: CallbackCustom()}})
	return &Render{Text: text, Keyboard: rows}
}

func (r renderer) components(st *State) *Render {
	var b strings.Builder
	b.WriteString("Выбранное оборудование:\n")
	if len(st.SelectedEquipment) == 0 {
		b.WriteString("Ничего не выбрано")
	} else {
		for i, name := range st.SelectedEquipment {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "- %s", name)
		}
		fmt.Fprintf(&b, "\n\nСтоимость оборудования: %s руб.", formatPrice(r.eng.EquipmentCost(st.Selection())))
	}

	var rows [][]Button
	for i, comp := range r.cat.AllComponents() {
		label := fmt.Sprintf("%s — %s руб.", comp.Name, formatPrice(comp.Price))
		if st.HasEquipment(comp.Name) {
			label = "✅ " + label
		}
		rows = append(rows, []Button{{Text: label, Data: CallbackEquip(i)}})
	}
	rows = append(rows, []Button{{Text: "Завершить выбор оборудования", Data: CallbackEquipDone()}})
	return &Render{Text: b.String(), Keyboard: rows}
}

func (r renderer) services(st *State) *Render {
	var b strings.Builder
	b.WriteString("Выбранное оборудование:\n")
	if st.EquipmentSet != "" {
		fmt.Fprintf(&b, "Комплект «%s»", st.EquipmentSet)
	} else if len(st.SelectedEquipment) == 0 {
		b.WriteString("Ничего не выбрано")
	} else {
		for i, name := range st.SelectedEquipment {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "- %s", name)
		}
	}
	if cost := r.eng.EquipmentCost(st.Selection()); cost > 0 {
		fmt.Fprintf(&b, "\nСтоимость оборудования: %s руб.", formatPrice(cost))
	}
	b.WriteString("\n\nВыберите дополнительные услуги:")

	var rows [][]Button
	for i, svc := range r.cat.ServiceList {
		label := fmt.Sprintf("%s — %s руб.", svc.Name, formatPrice(svc.Price))
		if st.HasService(svc.Name) {
			label = "✅ " + label
		}
		rows = append(rows, []Button{{Text: label, Data: CallbackService(i)}})
	}
	rows = append(rows, []Button{{Text: "Завершить выбор услуг", Data: CallbackServicesDone()}})
	return &Render{Text: b.String(), Keyboard: rows}
}

func (r renderer) final(st *State) *Render {
	sel := st.Selection()
	drilling := r.eng.DrillingCost(st.Depth)
	total := r.eng.TotalCost(sel)

	var b strings.Builder
	b.WriteString("📋 *Итоговый расчет*\n\n")
	fmt.Fprintf(&b, "🏙️ Район: *%s*\n", st.District)
	fmt.Fprintf(&b, "🔍 Глубина бурения: *%d м*\n\n", st.Depth)
	fmt.Fprintf(&b, "💧 Стоимость бурения: *%s руб.*\n\n", formatPrice(drilling))

	b.WriteString("🛠️ Выбранное оборудование:\n")
	if st.EquipmentSet != "" {
		set := r.cat.SetByName(st.EquipmentSet)
		fmt.Fprintf(&b, "Комплект «%s»\n", st.EquipmentSet)
		if set != nil {
			for _, comp := range set.Components {
				fmt.Fprintf(&b, "- %s: %s руб.\n", comp.Name, formatPrice(comp.Price))
			}
		}
	} else if len(st.SelectedEquipment) == 0 {
		b.WriteString("Не выбрано\n")
	} else {
		for _, name := range st.SelectedEquipment {
			fmt.Fprintf(&b, "- %s: %s руб.\n", name, formatPrice(r.cat.ComponentPrice(name)))
		}
	}

	b.WriteString("\n🔧 Выбранные услуги:\n")
	if len(st.SelectedServices) == 0 {
		b.WriteString("Не выбрано\n")
	} else {
		for _, name := range st.SelectedServices {
			fmt.Fprintf(&b, "- %s: %s руб.\n", name, formatPrice(r.cat.ServicePrice(name)))
		}
	}

	fmt.Fprintf(&b, "\n💰 *Итоговая стоимость: %s руб.*", formatPrice(total))

	rows := [][]Button{{{Text: "Начать заново", Data: CallbackNewCalc()}}}
	return &Render{Text: b.String(), Keyboard: rows, Markdown: true}
}

// sampleDepths turns depth bands into a short list of round offers. Each
// band is sampled in steps of at least 5 meters so the keyboard stays
// within a handful of rows; the band edges are always offered.
func sampleDepths(bands []catalog.DepthBand) []int {
	var out []int
	seen := make(map[int]bool)
	add := func(d int) {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	for _, b := range bands {
		step := (b.Max - b.Min) / 4
		if step < 5 {
			step = 5
		}
		for d := b.Min; d < b.Max; d += step {
			add(d)
		}
		add(b.Max)
	}
	return out
}

// formatPrice renders a ruble amount with thin group separators, e.g.
// 72500 -> "72 500".
func formatPrice(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, " ")
	if neg {
		out = "-" + out
	}
	return out
}
