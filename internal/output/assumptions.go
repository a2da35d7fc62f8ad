package output

// ModelAssumptions lists the modeling conventions rendered in the console report.
var ModelAssumptions = []string{
	"Rates are nominal annual percentages compounded once per year",
	"Balances are reported at the end of each year",
	"A surplus without an allocation rule is kept as cash",
	"A shortfall not covered by withdrawal rules reduces cash, which may go negative",
	"Savings and assets are liquidated in their end year; gains over principal are taxed",
}
