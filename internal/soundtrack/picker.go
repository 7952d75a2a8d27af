package soundtrack

import (
	"errors"

	"github.com/ncruces/zenity"
)

// Pick asks the user for an audio file. It returns "" when the dialog is
// cancelled.
func Pick() (string, error) {
	filename, err := zenity.SelectFile(
		zenity.Title("Open Soundtrack"),
		zenity.FileFilters{{
			Name:     "Audio",
			Patterns: []string{"*.wav", "*.mp3", "*.flac"},
		}},
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return "", nil
	}
	return filename, err
}
