package fsstore

import (
	"encoding/json"
	"errors"

	"github.com/bitfsorg/securestore-go/storage"
)

// WriteJSON encodes v as indented JSON and saves it at path.
func (s *Store) WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &storage.ParseError{Path: path, Offset: -1, Err: err}
	}
	return s.Save(path, data)
}

// ReadJSON reads path and decodes its JSON content into out. A missing file
// yields (false, nil) and leaves out untouched. Malformed content yields a
// *storage.ParseError carrying the offset of the failure when the decoder
// reports one.
func (s *Store) ReadJSON(path string, out any) (bool, error) {
	data, found, err := s.Read(path)
	if err != nil || !found {
		return found, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return true, &storage.ParseError{Path: path, Offset: jsonOffset(err), Err: err}
	}
	return true, nil
}

func jsonOffset(err error) int64 {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return syntaxErr.Offset
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return typeErr.Offset
	}
	return -1
}
