package model

// CanonicalCurrency is an entry in the built-in seed list.
type CanonicalCurrency struct {
	Code   string
	Symbol string
}

// CanonicalCurrencies is the list used by bulk currency seeding. Codes follow
// ISO 4217; the symbol is display-only.
var CanonicalCurrencies = []CanonicalCurrency{
	{"EUR", "€"},
	{"GBP", "£"},
	{"JPY", "¥"},
	{"CHF", "Fr"},
	{"AUD", "A$"},
	{"CAD", "C$"},
	{"NZD", "NZ$"},
	{"SGD", "S$"},
	{"HKD", "HK$"},
	{"INR", "₹"},
	{"AED", "د.إ"},
	{"SAR", "﷼"},
	{"ZAR", "R"},
	{"TRY", "₺"},
	{"BRL", "R$"},
	{"MXN", "Mex$"},
	{"CNY", "¥"},
	{"KRW", "₩"},
	{"THB", "฿"},
	{"MYR", "RM"},
	{"IDR", "Rp"},
	{"PHP", "₱"},
	{"VND", "₫"},
	{"NGN", "₦"},
	{"EGP", "E£"},
	{"PKR", "₨"},
	{"BDT", "৳"},
	{"LKR", "Rs"},
	{"KES", "KSh"},
	{"PLN", "zł"},
	{"SEK", "kr"},
	{"NOK", "kr"},
	{"DKK", "kr"},
	{"CZK", "Kč"},
	{"HUF", "Ft"},
	{"ILS", "₪"},
	{"RUB", "₽"},
}
