package validators

type CarCreateRequest struct {
	Brand           string  `json:"brand" validate:"required,min=1,max=50"`
	Model           string  `json:"model" validate:"required,min=1,max=50"`
	Year            int     `json:"year" validate:"required,car_year"`
	Category        string  `json:"category" validate:"required,oneof=sedan suv hatchback van luxury convertible"`
	SeatingCapacity int     `json:"seating_capacity" validate:"required,min=1,max=12"`
	FuelType        string  `json:"fuel_type" validate:"required,oneof=petrol diesel hybrid electric"`
	Transmission    string  `json:"transmission" validate:"required,oneof=manual automatic semi-automatic"`
	PricePerDay     float64 `json:"price_per_day" validate:"required,gt=0"`
	Location        string  `json:"location" validate:"required,min=2,max=100"`
	Image           string  `json:"image" validate:"omitempty,url"`
	Description     string  `json:"description" validate:"omitempty,max=2000"`
}

type CarUpdateRequest struct {
	Brand           string   `json:"brand" validate:"omitempty,min=1,max=50"`
	Model           string   `json:"model" validate:"omitempty,min=1,max=50"`
	Year            int      `json:"year" validate:"omitempty,car_year"`
	Category        string   `json:"category" validate:"omitempty,oneof=sedan suv hatchback van luxury convertible"`
	SeatingCapacity int      `json:"seating_capacity" validate:"omitempty,min=1,max=12"`
	FuelType        string   `json:"fuel_type" validate:"omitempty,oneof=petrol diesel hybrid electric"`
	Transmission    string   `json:"transmission" validate:"omitempty,oneof=manual automatic semi-automatic"`
	PricePerDay     *float64 `json:"price_per_day" validate:"omitempty,gt=0"`
	Location        string   `json:"location" validate:"omitempty,min=2,max=100"`
	Image           string   `json:"image" validate:"omitempty,url"`
	Description     string   `json:"description" validate:"omitempty,max=2000"`
	IsAvailable     *bool    `json:"is_available"`
}

// Updates maps only the provided fields onto repository update keys.
func (r *CarUpdateRequest) Updates() map[string]interface{} {
	updates := make(map[string]interface{})
	if r.Brand != "" {
		updates["brand"] = r.Brand
	}
	if r.Model != "" {
		updates["model"] = r.Model
	}
	if r.Year != 0 {
		updates["year"] = r.Year
	}
	if r.Category != "" {
		updates["category"] = r.Category
	}
	if r.SeatingCapacity != 0 {
		updates["seating_capacity"] = r.SeatingCapacity
	}
	if r.FuelType != "" {
		updates["fuel_type"] = r.FuelType
	}
	if r.Transmission != "" {
		updates["transmission"] = r.Transmission
	}
	if r.PricePerDay != nil {
		updates["price_per_day"] = *r.PricePerDay
	}
	if r.Location != "" {
		updates["location"] = r.Location
	}
	if r.Image != "" {
		updates["image"] = r.Image
	}
	if r.Description != "" {
		updates["description"] = r.Description
	}
	if r.IsAvailable != nil {
		updates["is_available"] = *r.IsAvailable
	}
	return updates
}
