package equipment

import "gearvault/internal/domain"

type Badge string

const (
	BadgeSuccess Badge = "success"
	BadgeWarning Badge = "warning"
	BadgeError   Badge = "error"
	BadgeDefault Badge = "default"
)

// StatusBadge maps a status to the colour class the client renders.
func StatusBadge(s domain.EquipmentStatus) Badge {
	switch s {
	case domain.StatusActive:
		return BadgeSuccess
	case domain.StatusMaintenance:
		return BadgeWarning
	case domain.StatusLost:
		return BadgeError
	default:
		return BadgeDefault
	}
}

// PrimaryImage returns the image flagged primary, else the first one, else nil.
func PrimaryImage(images []domain.Image) *domain.Image {
	for i := range images {
		if images[i].IsPrimary {
			return &images[i]
		}
	}
	if len(images) == 0 {
		return nil
	}
	return &images[0]
}

// View is the equipment read model returned by the API.
type View struct {
	domain.Equipment
	StatusBadge     Badge  `json:"status_badge"`
	PrimaryImageURL string `json:"primary_image_url,omitempty"`
}

func NewView(e *domain.Equipment) View {
	v := View{Equipment: *e, StatusBadge: StatusBadge(e.Status)}
	if img := PrimaryImage(e.Images); img != nil {
		v.PrimaryImageURL = img.ImageURL
	}
	return v
}
