package cryptoutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/minio/sio"
)

const (
	metadataMagic = "ESS1"
	metadataVer   = uint16(1)
)

// EncryptMetadata encrypts a metadata file payload: a small header followed
// by a DARE (sio) stream.
func EncryptMetadata(plain []byte, key []byte) ([]byte, error) {
	buf := &bytes.Buffer{}
	if _, err := buf.WriteString(metadataMagic); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.BigEndian, metadataVer); err != nil {
		return nil, err
	}
	w, err := sio.EncryptWriter(buf, sio.Config{Key: key})
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(plain); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecryptMetadata decrypts an encrypted metadata file payload.
func DecryptMetadata(ciphertext []byte, key []byte) ([]byte, error) {
	if len(ciphertext) < 4+2 {
		return nil, fmt.Errorf("metadata cipher too short")
	}
	if string(ciphertext[:4]) != metadataMagic {
		return nil, fmt.Errorf("invalid metadata header")
	}
	ver := binary.BigEndian.Uint16(ciphertext[4:6])
	if ver != metadataVer {
		return nil, fmt.Errorf("unsupported metadata version %d", ver)
	}
	r, err := sio.DecryptReader(bytes.NewReader(ciphertext[6:]), sio.Config{Key: key})
	if err != nil {
		return nil, err
	}
	plain, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decrypt metadata: %w", err)
	}
	return plain, nil
}
