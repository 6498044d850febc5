// Package assettag builds asset numbers and tags of the form COMPANY/Type/FY/N SN:SERIAL.
package assettag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crucial707/it-inventory/internal/models"
)

// ErrInvalidPurchaseDate is returned when the purchase date is not YYYY-MM-DD.
var ErrInvalidPurchaseDate = errors.New("invalid purchase date")

// FinancialYear returns the April-to-March financial year of a YYYY-MM-DD date, e.g. "24-25"
// for 2024-06-01 and "23-24" for 2024-03-31.
func FinancialYear(date string) (string, error) {
	d, err := time.Parse(models.DateLayout, strings.TrimSpace(date))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPurchaseDate, date)
	}
	start := d.Year()
	if d.Month() < time.April {
		start--
	}
	return fmt.Sprintf("%02d-%02d", start%100, (start+1)%100), nil
}

// CounterDeviceType is the device type a counter is kept under. Desktops and workstations
// share the laptop sequence; every monitor tag uses the Monitor sequence.
func CounterDeviceType(deviceType string, isMachine bool) string {
	if !isMachine {
		return "Monitor"
	}
	switch deviceType {
	case "Desktop", "Workstation":
		return "Laptop"
	}
	return deviceType
}

// Format renders the asset number and the asset tag.
func Format(company, deviceType, fy string, counter int, serial string) (assetNo, tag string) {
	company = strings.ToUpper(strings.TrimSpace(company))
	serial = strings.ToUpper(strings.TrimSpace(serial))
	assetNo = fmt.Sprintf("%s/%s/%s/%d", company, deviceType, fy, counter)
	return assetNo, assetNo + " SN:" + serial
}

// Counters hands out per company and device type sequence numbers.
type Counters interface {
	Last(ctx context.Context, company, deviceType string) (int, error)
	Next(ctx context.Context, company, deviceType string) (int, error)
}

// Request describes the machine or monitor half of a systems record to tag.
type Request struct {
	Company        string `json:"company" validate:"required"`
	DeviceType     string `json:"deviceType" validate:"required"`
	DateOfPurchase string `json:"purchaseDate" validate:"required"`
	Serial         string `json:"serial" validate:"required"`
	IsMachine      bool   `json:"isMachine"`
}

// Tag is a generated asset number and tag.
type Tag struct {
	AssetNo       string `json:"assetNo"`
	AssetTag      string `json:"assetTag"`
	Counter       int    `json:"counter"`
	FinancialYear string `json:"financialYear"`
}

// Generator issues tags backed by a counter store.
type Generator struct {
	Counters Counters
}

// Preview returns the tag the next call to Next would produce without reserving it.
func (g *Generator) Preview(ctx context.Context, req Request) (Tag, error) {
	return g.build(ctx, req, g.Counters.Last, 1)
}

// Next reserves the next counter and returns the tag built from it.
func (g *Generator) Next(ctx context.Context, req Request) (Tag, error) {
	return g.build(ctx, req, g.Counters.Next, 0)
}

func (g *Generator) build(ctx context.Context, req Request, counter func(context.Context, string, string) (int, error), add int) (Tag, error) {
	fy, err := FinancialYear(req.DateOfPurchase)
	if err != nil {
		return Tag{}, err
	}
	company := strings.ToUpper(strings.TrimSpace(req.Company))
	n, err := counter(ctx, company, CounterDeviceType(req.DeviceType, req.IsMachine))
	if err != nil {
		return Tag{}, fmt.Errorf("asset tag counter: %w", err)
	}
	n += add
	no, tag := Format(company, req.DeviceType, fy, n, req.Serial)
	return Tag{AssetNo: no, AssetTag: tag, Counter: n, FinancialYear: fy}, nil
}
