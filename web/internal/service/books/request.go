package books

import (
	"strconv"

	"github.com/Astemirdum/library-web/web/internal/model"
)

type copyRequest struct {
	InvoiceCode  string           `json:"invoiceCode"`
	Location     string           `json:"location"`
	Cost         float64          `json:"cost"`
	DateAcquired string           `json:"dateAcquired"`
	Condition    model.Condition  `json:"condition"`
	Observations string           `json:"observations"`
	Status       model.CopyStatus `json:"status,omitempty"`
}

func copyRequestOf(f model.CopyForm) copyRequest {
	cost, _ := strconv.ParseFloat(f.Cost, 64) //nolint:errcheck
	return copyRequest{
		InvoiceCode:  f.InvoiceCode,
		Location:     f.Location,
		Cost:         cost,
		DateAcquired: f.DateAcquired,
		Condition:    f.Condition,
		Observations: f.Observations,
		Status:       f.Status,
	}
}

type createRequest struct {
	model.GeneralInfo
	copyRequest
	Code    string `json:"code"`
	Company string `json:"company,omitempty"`
}

func newCreateRequest(f model.CreateBookForm) createRequest {
	return createRequest{
		GeneralInfo: f.GeneralInfo,
		copyRequest: copyRequestOf(f.CopyForm),
		Code:        f.Code,
		Company:     f.Company,
	}
}
