package service

import (
	"fmt"
	"log"
	"time"

	"equiprent/internal/entities"
)

type SenderService struct {
}

func NewSenderService() *SenderService {
	return &SenderService{}
}

// NotifyRentalStatus emails the renter about a status change and, when a
// phone number is on file, sends an SMS as well. Both sends run in the
// background; failures are logged only.
func (s *SenderService) NotifyRentalStatus(toEmail, toName, toPhone string, data entities.RentalEmailData) {
	subject := fmt.Sprintf("Your EquipRent rental is %s - Code: %s", data.Status, data.RentalCode)
	plainTextBody := fmt.Sprintf(
		"Hello %s,\n\nYour rental at EquipRent is %s.\n\n"+
			"Rental Details:\n"+
			"Rental Code: %s\n"+
			"Equipment: %s\n"+
			"Start: %s\n"+
			"End: %s\n"+
			"Total: $%.2f\n\n"+
			"Thank you for choosing EquipRent.\n\n"+
			"EquipRent %d. All rights reserved.",
		toName, data.Status, data.RentalCode, data.EquipmentName,
		data.StartDateFormatted, data.EndDateFormatted, data.TotalValue, data.CurrentYear,
	)
	htmlBody := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your rental <strong>%s</strong> (%s) is <strong>%s</strong>.</p>"+
			"<p>%s &rarr; %s<br>Total: $%.2f</p>",
		toName, data.RentalCode, data.EquipmentName, data.Status,
		data.StartDateFormatted, data.EndDateFormatted, data.TotalValue,
	)

	go func() {
		if err := SendEmailWithSendGrid(toEmail, toName, subject, plainTextBody, htmlBody); err != nil {
			log.Printf("ALERT (async): email for rental %s failed: %v", data.RentalCode, err)
		}
	}()

	if toPhone == "" {
		return
	}
	smsMessage := fmt.Sprintf("EquipRent: rental %s is %s!\nStart: %s.\nMore details in your email.",
		data.RentalCode, data.Status, data.StartDateFormatted)
	go func() {
		if err := SendSMS(toPhone, smsMessage); err != nil {
			log.Printf("ALERT (async): SMS for rental %s failed: %v", data.RentalCode, err)
		}
	}()
}

// BuildRentalEmailData formats the template payload for a rental.
func BuildRentalEmailData(userName, rentalCode, equipmentName, status string, start, end time.Time, totalValue float64) entities.RentalEmailData {
	return entities.RentalEmailData{
		UserName:           userName,
		RentalCode:         rentalCode,
		EquipmentName:      equipmentName,
		StartDateFormatted: start.Format("02 Jan 2006"),
		EndDateFormatted:   end.Format("02 Jan 2006"),
		TotalValue:         totalValue,
		Status:             status,
		CurrentYear:        time.Now().UTC().Year(),
	}
}
