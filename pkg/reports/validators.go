package reports

type TopBooksQuery struct {
	Limit int `query:"limit" json:"limit,omitempty" default:"5" validate:"min=1,max=100"`
}

type OverdueQuery struct {
	AsOf *string `query:"as_of" json:"as_of,omitempty" validate:"omitempty,date,ne="`
}
