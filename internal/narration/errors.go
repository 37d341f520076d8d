package narration

import (
	"errors"

	"github.com/dgnsrekt/flipbook/internal/pcm"
)

var (
	// ErrMalformedAudio indicates the payload could not be decoded as PCM.
	ErrMalformedAudio = pcm.ErrMalformedAudio

	// ErrNothingToRead indicates the spread has no text.
	ErrNothingToRead = errors.New("nothing to read on this spread")
)
