package narration

import (
	"encoding/base64"
	"fmt"

	"github.com/dgnsrekt/flipbook/internal/pcm"
)

// DecodeBase64 decodes a base64 audio payload. Both padded and unpadded
// standard encodings are accepted.
func DecodeBase64(payload string) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedAudio)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		var rawErr error
		data, rawErr = base64.RawStdEncoding.DecodeString(payload)
		if rawErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedAudio, err)
		}
	}
	return data, nil
}

// DecodePCM turns signed 16-bit little-endian speech audio into samples.
func DecodePCM(data []byte, channels int) (pcm.Buffer, error) {
	return pcm.Decode(data, pcm.SpeechSampleRate, channels)
}
