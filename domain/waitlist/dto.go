package waitlist

import (
	"strings"
	"unicode"

	"github.com/akeren/multiverse-waitlist/internal/models"
	"github.com/akeren/multiverse-waitlist/pkg/constants"
)

// SubmitWaitlistEntryRequest is the public submission payload. Country and City
// come from edge headers, never from the body.
type SubmitWaitlistEntryRequest struct {
	Email       string `json:"email"`
	UTMSource   string `json:"utm_source"`
	UTMMedium   string `json:"utm_medium"`
	UTMCampaign string `json:"utm_campaign"`

	Country string `json:"-"`
	City    string `json:"-"`
}

type WaitlistEntryResponse struct {
	ID          uint   `json:"id"`
	Email       string `json:"email"`
	Source      string `json:"source"`
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	Country     string `json:"country,omitempty"`
	City        string `json:"city,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// Column widths from the waitlist table.
const (
	maxUTMLength     = 255
	maxCountryLength = 64
	maxCityLength    = 128
)

func ToWaitlistEntryModel(req *SubmitWaitlistEntryRequest, email string) *models.WaitlistEntry {
	return &models.WaitlistEntry{
		Email:       email,
		Source:      constants.DefaultWaitlistSource,
		UTMSource:   truncate(req.UTMSource, maxUTMLength),
		UTMMedium:   truncate(req.UTMMedium, maxUTMLength),
		UTMCampaign: truncate(req.UTMCampaign, maxUTMLength),
		Country:     truncate(req.Country, maxCountryLength),
		City:        truncate(req.City, maxCityLength),
		Status:      constants.DefaultWaitlistStatus,
	}
}

func ToWaitlistEntryResponse(entry *models.WaitlistEntry) WaitlistEntryResponse {
	if entry == nil {
		return WaitlistEntryResponse{}
	}
	return WaitlistEntryResponse{
		ID:          entry.ID,
		Email:       entry.Email,
		Source:      entry.Source,
		UTMSource:   entry.UTMSource,
		UTMMedium:   entry.UTMMedium,
		UTMCampaign: entry.UTMCampaign,
		Country:     entry.Country,
		City:        entry.City,
		Status:      entry.Status,
		CreatedAt:   entry.CreatedAt.UTC().Format(constants.RFC3339DateTimeFormat),
	}
}

func ToWaitlistEntryResponses(entries []*models.WaitlistEntry) []WaitlistEntryResponse {
	responses := make([]WaitlistEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, ToWaitlistEntryResponse(entry))
	}
	return responses
}

// truncate drops invalid UTF-8 and control characters, trims s and cuts it to at most n runes.
func truncate(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
