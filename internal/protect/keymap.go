package protect

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
)

// KeyMap is the client-to-encryption-key mapping loaded from an XML file:
//
//	<keymap>
//	  <client id="ACME01" keyfile="/etc/keys/acme01.key"/>
//	</keymap>
type KeyMap struct {
	XMLName xml.Name      `xml:"keymap"`
	Clients []KeyMapEntry `xml:"client"`
}

// KeyMapEntry maps one client identifier to its key file path.
type KeyMapEntry struct {
	ID      string `xml:"id,attr"`
	KeyFile string `xml:"keyfile,attr"`
}

// LoadKeyMap parses the XML key mapping file at path.
func LoadKeyMap(path string) (*KeyMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key map %s: %w", path, err)
	}

	var km KeyMap
	if err := xml.Unmarshal(data, &km); err != nil {
		return nil, fmt.Errorf("parsing key map %s: %w", path, err)
	}

	return &km, nil
}

// ResolveKeyFile returns the key file path for the given client identifier.
// Absence of a match is fatal to the run before any parsing begins; the
// caller is expected to treat the error as start-up fatal.
func (km *KeyMap) ResolveKeyFile(clientID string) (string, error) {
	clientID = strings.TrimSpace(clientID)
	for _, entry := range km.Clients {
		if strings.EqualFold(entry.ID, clientID) {
			if entry.KeyFile == "" {
				return "", fmt.Errorf("client %s has no key file configured", clientID)
			}
			return entry.KeyFile, nil
		}
	}
	return "", fmt.Errorf("no key file mapped for client %s", clientID)
}
