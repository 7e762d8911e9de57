package entities

// RentalEmailData feeds the status notification templates.
type RentalEmailData struct {
	UserName           string
	RentalCode         string
	EquipmentName      string
	StartDateFormatted string
	EndDateFormatted   string
	TotalValue         float64
	Status             string
	CurrentYear        int
}
