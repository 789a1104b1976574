package authoring

import (
	"strconv"

	"jobboard-workers/internal/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// SalaryOptions are the monthly peso amounts offered for the salary range.
var SalaryOptions = []int{10000, 20000, 30000, 40000, 50000, 75000, 100000, 150000, 200000, 250000, 300000}

// SalaryOptionList returns SalaryOptions as labelled options. The top
// amount reads as open-ended.
func SalaryOptionList() []models.Option {
	out := make([]models.Option, 0, len(SalaryOptions))
	for i, v := range SalaryOptions {
		label := Peso(v)
		if i == len(SalaryOptions)-1 {
			label += "+"
		}
		out = append(out, models.Option{Value: strconv.Itoa(v), Label: label})
	}
	return out
}

// Peso formats an amount with thousands separators, e.g. ₱10,000.
func Peso(amount int) string {
	return printer.Sprintf("₱%d", amount)
}

// SalaryRange formats the posting salary, e.g. ₱10,000 - ₱20,000.
func SalaryRange(low, high int) string {
	return Peso(low) + " - " + Peso(high)
}
