package fines

type ListFinesQuery struct {
	Limit    int   `query:"limit" json:"limit,omitempty" default:"20" validate:"min=1,max=100"`
	Offset   int   `query:"offset" json:"offset,omitempty" validate:"min=0"`
	ReaderID *int  `query:"reader_id" json:"reader_id,omitempty" validate:"omitempty,min=1"`
	Unpaid   *bool `query:"unpaid" json:"unpaid,omitempty"`
}
