package keyfile

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/andygrunwald/vdf"
)

// A DepotKey pairs a depot id with its decryption key
type DepotKey struct {
	DepotID       string
	DecryptionKey string
}

// Parses a VDF key file into a list of [DepotKey] records, sorted by depot id.
// Returns an error if the document is malformed.
// Returns an error if the document is missing the top-level depots section.
// Returns an error if a depot entry is missing its decryption key.
func Parse(data []byte) ([]DepotKey, error) {
	fail := func(err error) ([]DepotKey, error) {
		return nil, err
	}

	parser := vdf.NewParser(bytes.NewReader(data))
	parsed, err := parser.Parse()
	if err != nil {
		return fail(err)
	}

	depots, ok := parsed["depots"].(map[string]any)
	if !ok {
		return fail(fmt.Errorf("key file contains no depots section"))
	}

	keys := []DepotKey{}
	for depotID, value := range depots {
		depot, ok := value.(map[string]any)
		if !ok {
			continue
		}
		decryptionKey, ok := depot["DecryptionKey"].(string)
		if !ok {
			return fail(fmt.Errorf("depot %s is missing a decryption key", depotID))
		}
		keys = append(keys, DepotKey{DepotID: depotID, DecryptionKey: decryptionKey})
	}

	slices.SortFunc(keys, compareDepotKeys)
	return keys, nil
}

// Orders [DepotKey] records numerically by depot id, falling back to a lexical comparison.
func compareDepotKeys(a DepotKey, b DepotKey) int {
	aID, aErr := strconv.Atoi(a.DepotID)
	bID, bErr := strconv.Atoi(b.DepotID)
	if aErr == nil && bErr == nil {
		return aID - bID
	}
	return strings.Compare(a.DepotID, b.DepotID)
}
