package core

import "fmt"

// Language selects the display language for labels.
type Language string

const (
	Kannada Language = "kn"
	English Language = "en"
)

func (l Language) Validate() error {
	switch l {
	case Kannada, English:
		return nil
	}
	return fmt.Errorf("%w: language %q", ErrInvalidEnum, string(l))
}

// Pick returns kn or en depending on the language. Unknown languages fall back to Kannada,
// the default of the app.
func (l Language) Pick(kn, en string) string {
	if l == English {
		return en
	}
	return kn
}

type label struct{ kn, en string }

var labels = map[string]label{
	"home":      {"ಮನೆ", "Home"},
	"contracts": {"ಗುತ್ತಿಗೆ", "Contracts"},
	"labour":    {"ಕಾರ್ಮಿಕ", "Labour"},
	"loans":     {"ಸಾಲ", "Loans"},
	"reports":   {"ವರದಿ", "Reports"},

	"income":  {"ಆದಾಯ", "Income"},
	"expense": {"ಖರ್ಚು", "Expense"},
	"profit":  {"ಲಾಭ", "Profit"},
	"loss":    {"ನಷ್ಟ", "Loss"},
	"balance": {"ಬಾಕಿ", "Balance"},
	"total":   {"ಒಟ್ಟು", "Total"},
	"paid":    {"ಪಾವತಿ", "Paid"},
	"pending": {"ಬಾಕಿ", "Pending"},

	"overall_profit_loss": {"ಒಟ್ಟಾರೆ ಲಾಭ/ನಷ್ಟ", "Overall Profit/Loss"},
	"business_expense":    {"ವ್ಯಾಪಾರ ಖರ್ಚು", "Business"},
	"labour_due":          {"ಕಾರ್ಮಿಕ ಬಾಕಿ", "Labour Due"},
	"loan_due":            {"ಸಾಲ ಬಾಕಿ", "Loan Due"},

	string(Cash):    {"ನಗದು", "Cash"},
	string(PhonePe): {"PhonePe", "PhonePe"},
	string(GPay):    {"GPay", "GPay"},

	string(Material):    {"ಸಾಮಗ್ರಿ", "Material"},
	string(Transport):   {"ಸಾರಿಗೆ", "Transport"},
	string(PersonalUse): {"ವೈಯಕ್ತಿಕ", "Personal"},
	string(LoanPaid):    {"ಸಾಲ ಪಾವತಿ", "Loan Payment"},

	string(Mason):       {"ಕಲ್ಲಿನ ಕೆಲಸಗಾರ", "Mason"},
	string(Helper):      {"ಸಹಾಯಕ", "Helper"},
	string(Electrician): {"ವಿದ್ಯುತ್ಕಾರ", "Electrician"},
	string(Plumber):     {"ಪ್ಲಂಬರ್", "Plumber"},
	string(Carpenter):   {"ಬಡಗಿ", "Carpenter"},
	string(Painter):     {"ಪೇಂಟರ್", "Painter"},
	string(OtherWork):   {"ಇತರೆ", "Other"},

	string(Permanent): {"ಕಾಯಂ", "Permanent"},
	string(Temporary): {"ತಾತ್ಕಾಲಿಕ", "Temporary"},

	string(BankLoan):  {"ಬ್ಯಾಂಕ್", "Bank"},
	string(LocalLoan): {"ಖಾಸಗಿ", "Local/Private"},

	string(Monthly): {"ಮಾಸಿಕ", "Monthly"},
	string(Yearly):  {"ವಾರ್ಷಿಕ", "Yearly"},

	"today":  {"ಇಂದು", "Today"},
	"date":   {"ದಿನಾಂಕ", "Date"},
	"amount": {"ಮೊತ್ತ", "Amount"},
	"notes":  {"ಟಿಪ್ಪಣಿ", "Notes"},

	"daily_reminder": {"ಇಂದು ಖರ್ಚು entry ಮಾಡಿದ್ರಾ?", "Did you enter today's expenses?"},
}

// Label returns the text for key in the given language, or the key itself when unknown.
// LabourCost shares the "labour" key with the navigation label.
func Label(key string, lang Language) string {
	l, ok := labels[key]
	if !ok {
		return key
	}
	return lang.Pick(l.kn, l.en)
}
