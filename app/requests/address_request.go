package requests

import "github.com/kruegge82/adressCorrector/app/models"

// CorrectAddressRequest carries one structured record.
type CorrectAddressRequest struct {
	models.AddressFields
}

// ParseAddressRequest carries a single address line such as
// "Pielstraße 8, 33100 Paderborn".
type ParseAddressRequest struct {
	Address string `json:"address" binding:"required"`
}

// BatchCorrectRequest carries up to 1000 records corrected in one call.
type BatchCorrectRequest struct {
	Addresses []models.AddressFields `json:"addresses" binding:"required,min=1,max=1000"`
}

// SubmitJobRequest queues records for background correction.
type SubmitJobRequest struct {
	Addresses []models.AddressFields `json:"addresses" binding:"required,min=1,max=20000"`
}

// SeedReferenceRequest replaces the reference data.
type SeedReferenceRequest struct {
	Data models.Dataset `json:"data" binding:"required"`
}
