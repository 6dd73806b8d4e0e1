package catalog

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type CreateLocationRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// UpdateLocationRequest keeps the stored description when Description is nil.
type UpdateLocationRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}
