package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf/v2"

	"tink_backend/internal/model"
)

// LeaseDocumentData carries everything the draft lease document needs.
type LeaseDocumentData struct {
	Lease        *model.Lease
	Tenant       *model.Tenant
	Property     *model.Property
	Room         *model.Room
	LandlordName string
}

// GenerateDraftLease renders the draft lease agreement as a PDF.
func GenerateDraftLease(data LeaseDocumentData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Residential Lease Agreement", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Draft generated: %s", time.Now().Format("02-Jan-2006")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Parties
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Parties", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Landlord: %s", data.LandlordName), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Tenant: %s", data.Tenant.FullName), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Tenant email: %s", data.Tenant.Email), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Tenant phone: %s", data.Tenant.Phone), "RB", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Premises
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Premises", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(190, 7, fmt.Sprintf("Property: %s", data.Property.Name), "LRB", 1, "L", false, 0, "")
	pdf.CellFormat(190, 7, fmt.Sprintf("Address: %s", data.Property.FullAddress()), "LRB", 1, "L", false, 0, "")
	if data.Room != nil {
		pdf.CellFormat(190, 7, fmt.Sprintf("Unit: %s (room %s)", data.Room.Name, data.Room.RoomNumber), "LRB", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(190, 7, "Unit: entire property", "LRB", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Terms
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Terms", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(47, 7, "Start date", "1", 0, "C", true, 0, "")
	pdf.CellFormat(47, 7, "End date", "1", 0, "C", true, 0, "")
	pdf.CellFormat(48, 7, "Monthly rent", "1", 0, "C", true, 0, "")
	pdf.CellFormat(48, 7, "Security deposit", "1", 1, "C", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(47, 7, data.Lease.StartDate.Format("02-Jan-2006"), "1", 0, "C", false, 0, "")
	pdf.CellFormat(47, 7, data.Lease.EndDate.Format("02-Jan-2006"), "1", 0, "C", false, 0, "")
	pdf.CellFormat(48, 7, fmt.Sprintf("$%.2f", data.Lease.MonthlyRent), "1", 0, "C", false, 0, "")
	pdf.CellFormat(48, 7, fmt.Sprintf("$%.2f", data.Lease.SecurityDeposit), "1", 1, "C", false, 0, "")
	pdf.Ln(6)

	if data.Lease.DecisionNotes != "" {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(190, 8, "Notes", "1", 1, "L", true, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(190, 6, data.Lease.DecisionNotes, "LRB", "L", false)
		pdf.Ln(4)
	}

	// Signature blocks
	pdf.SetFont("Arial", "", 11)
	pdf.Ln(10)
	pdf.CellFormat(95, 7, "Landlord signature: ______________________", "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, "Tenant signature: ______________________", "", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, "Date: ____________", "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, "Date: ____________", "", 1, "L", false, 0, "")

	pdf.SetY(-20)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(190, 5, "DRAFT - not valid until signed by both parties", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("could not render lease PDF: %v", err)
	}
	return buf.Bytes(), nil
}
