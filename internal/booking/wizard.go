package booking

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"time"

	"pulse-backend/config"
	"pulse-backend/internal/model"
)

// The wizard validates a reservation request at the input boundary, prices
// it, and assigns a table. Validation failures never reach the backend.

// TimeSlots are the selectable arrival windows.
var TimeSlots = []string{"10:00 PM", "11:00 PM", "12:00 AM", "01:00 AM"}

var (
	gmailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@gmail\.com$`)
	phoneRe = regexp.MustCompile(`^\d+$`)
)

var (
	ErrNameTooShort  = errors.New("name must be longer than 2 characters")
	ErrInvalidEmail  = errors.New("only @gmail.com accounts are accepted")
	ErrInvalidPhone  = errors.New("phone must be numeric and at least 8 digits")
	ErrInvalidZone   = errors.New("unknown zone")
	ErrInvalidSlot   = errors.New("unknown time slot")
	ErrPartyTooSmall = errors.New("party size must be at least 1")
)

// Request is the raw wizard submission.
type Request struct {
	Date      string          `json:"date" binding:"required"`
	Time      string          `json:"time" binding:"required"`
	PartySize int             `json:"partySize" binding:"required"`
	Zone      model.TableZone `json:"zone" binding:"required"`
	Name      string          `json:"name" binding:"required"`
	Email     string          `json:"email" binding:"required"`
	Phone     string          `json:"phone" binding:"required"`
}

// ValidateIdentity applies the identity-step rules: a usable name, a gmail
// address, a numeric phone of at least 8 digits.
func ValidateIdentity(name, email, phone string) error {
	if len(name) <= 2 {
		return ErrNameTooShort
	}
	if !gmailRe.MatchString(email) {
		return ErrInvalidEmail
	}
	if !phoneRe.MatchString(phone) || len(phone) < 8 {
		return ErrInvalidPhone
	}
	return nil
}

// Validate checks the whole submission.
func (req Request) Validate() error {
	if !model.ValidZone(req.Zone) {
		return fmt.Errorf("%w: %q", ErrInvalidZone, req.Zone)
	}
	if req.PartySize < 1 {
		return ErrPartyTooSmall
	}
	slotOK := false
	for _, slot := range TimeSlots {
		if req.Time == slot {
			slotOK = true
			break
		}
	}
	if !slotOK {
		return fmt.Errorf("%w: %q", ErrInvalidSlot, req.Time)
	}
	return ValidateIdentity(req.Name, req.Email, req.Phone)
}

// MinimumSpend returns the committed amount floor for a zone.
func MinimumSpend(zone model.TableZone, venue config.VenueConfig) float64 {
	if zone == model.ZoneVIPLounge {
		return venue.VIPMinimumSpend
	}
	return venue.StdMinimumSpend
}

// AssignTable picks a table identifier from the zone's pool: V-prefixed for
// the VIP lounge, M-prefixed otherwise.
func AssignTable(zone model.TableZone, venue config.VenueConfig) string {
	if zone == model.ZoneVIPLounge {
		return fmt.Sprintf("V%d", rand.Intn(venue.VIPTableCount)+1)
	}
	return fmt.Sprintf("M%d", rand.Intn(venue.MainTableCount)+1)
}

// Build turns a validated request into a pending reservation carrying a
// temporary identifier, priced at the zone minimum.
func (req Request) Build(venue config.VenueConfig) model.Reservation {
	return model.Reservation{
		ID:          model.NewTempID(),
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Date:        req.Date,
		Time:        req.Time,
		PartySize:   req.PartySize,
		Table:       AssignTable(req.Zone, venue),
		Zone:        req.Zone,
		Status:      model.StatusPending,
		TotalAmount: MinimumSpend(req.Zone, venue),
		VIP:         req.Zone == model.ZoneVIPLounge,
		CreatedAt:   time.Now().UTC(),
	}
}
