// Package video provides the value types exchanged between the generation
// pipeline and the history: the request describing one clip and the result
// produced once that clip has been downloaded.
package video

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRequest is returned when a Request fails validation.
var ErrInvalidRequest = errors.New("invalid video request")

// AspectRatio is the frame shape of the generated clip.
type AspectRatio string

const (
	// AspectLandscape is the 16:9 landscape frame.
	AspectLandscape AspectRatio = "16:9"
	// AspectPortrait is the 9:16 portrait frame.
	AspectPortrait AspectRatio = "9:16"
)

// Resolution is the vertical resolution of the generated clip.
type Resolution string

const (
	// Resolution720p is 720p HD.
	Resolution720p Resolution = "720p"
	// Resolution1080p is 1080p FHD.
	Resolution1080p Resolution = "1080p"
)

// Model selects the Veo variant used for generation.
type Model string

const (
	// ModelFast is optimized for speed.
	ModelFast Model = "fast"
	// ModelQuality takes longer but produces higher fidelity details.
	ModelQuality Model = "quality"
)

// ID returns the service model identifier for the variant.
func (m Model) ID() string {
	switch m {
	case ModelQuality:
		return "veo-3.1-generate-preview"
	default:
		return "veo-3.1-fast-generate-preview"
	}
}

// Label returns the human-readable name of the variant.
func (m Model) Label() string {
	if m == ModelQuality {
		return "Veo Quality"
	}
	return "Veo Fast"
}

// Request describes one generation request. It is a value: once submitted it
// is never modified.
type Request struct {
	// Prompt is the text description of the clip.
	Prompt string `json:"prompt" validate:"required,notblank"`
	// AspectRatio is the frame shape.
	AspectRatio AspectRatio `json:"aspect_ratio" validate:"required,oneof=16:9 9:16"`
	// Resolution is the output resolution.
	Resolution Resolution `json:"resolution" validate:"required,oneof=720p 1080p"`
	// Model is the Veo variant.
	Model Model `json:"model" validate:"required,oneof=fast quality"`
	// NegativePrompt optionally describes what the clip should avoid.
	NegativePrompt string `json:"negative_prompt,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Validate checks the request fields. The returned error wraps ErrInvalidRequest.
func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: field %s failed %q", ErrInvalidRequest, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}
