// Package speaker fills the Speaker column of split files from the game's
// message-metadata JSON (one <arc>.mss.json per archive). The metadata maps
// each message's read index to the NPC who says the line.
package speaker

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Name is a localized NPC name.
type Name struct {
	En string `json:"En"`
	Jp string `json:"Jp"`
}

// Message is one entry of a MsgData array. GmdIndex is a pointer because
// records without one must never match any lookup.
type Message struct {
	GmdIndex *int  `json:"GmdIndex"`
	NpcName  *Name `json:"NpcName"`
	NpcID    any   `json:"NpcId"`
}

// Group is one entry of NativeMsgGroupArray: a run of messages spoken by
// the same NPC.
type Group struct {
	MsgData []Message `json:"MsgData"`
	NpcName *Name     `json:"NpcName"`
	NpcID   any       `json:"NpcId"`
}

// Document is one parsed .mss.json file. Quest metadata uses grouped
// messages; some older files carry a bare MsgData array or are just an
// array of records at the top level.
type Document struct {
	NativeMsgGroupArray []Group   `json:"NativeMsgGroupArray"`
	MsgData             []Message `json:"MsgData"`
	NpcName             *Name     `json:"NpcName"`
	NpcID               any       `json:"NpcId"`

	records []Message // set when the document is a top-level array
}

// ParseDocument reads one metadata file in any of its three shapes.
func ParseDocument(r io.Reader) (*Document, error) {
	br := bufio.NewReader(r)
	first, err := firstByte(br)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(br)
	dec.UseNumber()

	doc := &Document{}
	if first == '[' {
		if err := dec.Decode(&doc.records); err != nil {
			return nil, err
		}
		return doc, nil
	}
	if err := dec.Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadDocument parses the metadata file at path.
func LoadDocument(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := ParseDocument(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// firstByte peeks past leading whitespace without consuming anything.
func firstByte(br *bufio.Reader) (byte, error) {
	for i := 1; ; i++ {
		buf, err := br.Peek(i)
		if err != nil {
			return 0, err
		}
		c := buf[i-1]
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			return c, nil
		}
	}
}

// Speaker resolves the NPC for the message with the given read index.
// Grouped metadata wins over flat records; within a match the English name
// is preferred and the raw NPC id is the fallback. No match means no
// speaker, which the filler writes as an empty cell.
func (d *Document) Speaker(index int) string {
	for _, group := range d.NativeMsgGroupArray {
		for _, msg := range group.MsgData {
			if msg.GmdIndex == nil || *msg.GmdIndex != index {
				continue
			}
			if name := cleanName(group.NpcName); name != "" {
				return name
			}
			return npcIDString(group.NpcID)
		}
	}

	for _, rec := range d.MsgData {
		if rec.GmdIndex == nil || *rec.GmdIndex != index {
			continue
		}
		if name := cleanName(rec.NpcName); name != "" {
			return name
		}
		if name := cleanName(d.NpcName); name != "" {
			return name
		}
		return npcIDString(d.NpcID)
	}

	for _, rec := range d.records {
		if rec.GmdIndex == nil || *rec.GmdIndex != index {
			continue
		}
		if name := cleanName(rec.NpcName); name != "" {
			return name
		}
		return npcIDString(rec.NpcID)
	}
	return ""
}

func cleanName(n *Name) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.En)
}

// npcIDString renders an NpcId that may be a JSON number or string.
func npcIDString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case json.Number:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}
