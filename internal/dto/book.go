package dto

// CreateBookRequest is the payload for creating a book in the selected
// business. The book inherits the business currency.
type CreateBookRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// UpdateBookRequest renames a book and/or changes its currency.
type UpdateBookRequest struct {
	Name     *string `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	Currency *string `json:"currency,omitempty" binding:"omitempty,len=3"`
}

// DuplicateBookRequest names the copy produced by the duplicate procedure.
type DuplicateBookRequest struct {
	NewName string `json:"new_name" binding:"required,min=1,max=100"`
}

// TransferBookRequest moves a book to another business.
type TransferBookRequest struct {
	NewBusinessID string `json:"new_business_id" binding:"required"`
}

// CreateCustomFieldRequest adds a named entry field definition to a book.
type CreateCustomFieldRequest struct {
	FieldName string `json:"field_name" binding:"required,min=1,max=50"`
}

// ToggleCustomFieldRequest flips an enabled/required flag on a definition.
type ToggleCustomFieldRequest struct {
	Value *bool `json:"value" binding:"required"`
}

// AddBookMemberRequest grants a business member access to a book.
type AddBookMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
}
