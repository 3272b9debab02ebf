package core

// DescriptionTotal is an aggregate amount grouped by bill description.
type DescriptionTotal struct {
	Description string
	Total       Money
}

// MonthTotal is an aggregate amount for a due month.
type MonthTotal struct {
	Month YearMonth
	Total Money
}
