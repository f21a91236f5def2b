package books

type CreateBookPayload struct {
	Title       string `json:"title" mod:"trim" validate:"required,max=500"`
	AuthorID    *int   `json:"author_id,omitempty" validate:"omitempty,min=1"`
	CategoryID  *int   `json:"category_id,omitempty" validate:"omitempty,min=1"`
	PublishYear *int   `json:"publish_year,omitempty" validate:"omitempty,min=0,max=9999"`
}

type UpdateBookPayload struct {
	Title       *string `json:"title,omitempty" mod:"trim" validate:"omitempty,ne=,max=500"`
	AuthorID    *int    `json:"author_id,omitempty" validate:"omitempty,min=0"`
	CategoryID  *int    `json:"category_id,omitempty" validate:"omitempty,min=0"`
	PublishYear *int    `json:"publish_year,omitempty" validate:"omitempty,min=0,max=9999"`
}

type ListBooksQuery struct {
	Limit      int     `query:"limit" json:"limit,omitempty" default:"20" validate:"min=1,max=100"`
	Offset     int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	AuthorID   *int    `query:"author_id" json:"author_id,omitempty" validate:"omitempty,min=1"`
	CategoryID *int    `query:"category_id" json:"category_id,omitempty" validate:"omitempty,min=1"`
	Available  *bool   `query:"available" json:"available,omitempty"`
	Search     *string `query:"search" json:"search,omitempty"`
}
