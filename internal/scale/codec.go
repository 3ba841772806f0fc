package scale

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrCorruptBuffer is returned when a scaler blob is truncated or its
// declared dimension does not match its length.
var ErrCorruptBuffer = errors.New("corrupt scaler buffer")

// MarshalBinary encodes the fitted parameters as a flat little-endian
// buffer: uint32 dimension, then the medians, then the IQRs, each as
// float32. Returns ErrNotFitted before Fit.
func (s *RobustScaler) MarshalBinary() ([]byte, error) {
	if !s.Fitted() {
		return nil, ErrNotFitted
	}

	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(s.medians))); err != nil {
		return nil, fmt.Errorf("failed to write dimension: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, s.medians); err != nil {
		return nil, fmt.Errorf("failed to write medians: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, s.iqrs); err != nil {
		return nil, fmt.Errorf("failed to write IQRs: %w", err)
	}

	return buf.Bytes(), nil
}

// UnmarshalBinary decodes parameters produced by MarshalBinary,
// replacing any previously fitted state.
func (s *RobustScaler) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return ErrCorruptBuffer
	}

	dim := int(binary.LittleEndian.Uint32(data))
	if len(data) != 4+dim*8 {
		return ErrCorruptBuffer
	}

	medians := make([]float32, dim)
	iqrs := make([]float32, dim)
	for j := 0; j < dim; j++ {
		medians[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[4+j*4:]))
		iqrs[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[4+(dim+j)*4:]))
	}

	s.medians = medians
	s.iqrs = iqrs
	return nil
}
