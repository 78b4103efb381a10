package dto

// CreateCategoryRequest adds a transaction category to a business.
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CreatePaymentMethodRequest adds a payment mode to a business.
type CreatePaymentMethodRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CreateContactRequest adds a counterparty to a business.
type CreateContactRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	PhoneNumber string `json:"phone_number,omitempty" binding:"omitempty,max=30"`
}
