package bgg

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const playDateLayout = "2006-01-02"

// Parser turns a successful response body into typed records.
// Implementations must be pure: the same body always yields the same result.
type Parser interface {
	ParseCollection(body []byte, kind ItemKind) ([]CollectionItem, error)
	ParsePlays(body []byte) (*PlaysPage, error)
}

// XMLParser parses the upstream's XML API v2 documents
type XMLParser struct{}

// NewXMLParser creates the default document parser
func NewXMLParser() *XMLParser {
	return &XMLParser{}
}

type xmlCollection struct {
	TotalItems string    `xml:"totalitems,attr"`
	Items      []xmlItem `xml:"item"`
}

type xmlItem struct {
	ObjectID      string `xml:"objectid,attr"`
	Subtype       string `xml:"subtype,attr"`
	Name          string `xml:"name"`
	YearPublished string `xml:"yearpublished"`
	Thumbnail     string `xml:"thumbnail"`
}

type xmlPlays struct {
	Username string    `xml:"username,attr"`
	Total    string    `xml:"total,attr"`
	Page     string    `xml:"page,attr"`
	Plays    []xmlPlay `xml:"play"`
}

type xmlPlay struct {
	ID         string `xml:"id,attr"`
	Date       string `xml:"date,attr"`
	Quantity   string `xml:"quantity,attr"`
	Length     string `xml:"length,attr"`
	Incomplete string `xml:"incomplete,attr"`
	Location   string `xml:"location,attr"`
	Item       struct {
		Name     string `xml:"name,attr"`
		ObjectID string `xml:"objectid,attr"`
	} `xml:"item"`
	Comments string      `xml:"comments"`
	Players  []xmlPlayer `xml:"players>player"`
}

type xmlPlayer struct {
	Username      string `xml:"username,attr"`
	UserID        string `xml:"userid,attr"`
	Name          string `xml:"name,attr"`
	StartPosition string `xml:"startposition,attr"`
	Color         string `xml:"color,attr"`
	Score         string `xml:"score,attr"`
	Win           string `xml:"win,attr"`
}

type xmlErrors struct {
	Errors []struct {
		Message string `xml:"message"`
	} `xml:"error"`
}

// ParseCollection parses an <items> document. Every record is tagged with
// kind, since the sub-fetch that produced the body decides it.
func (p *XMLParser) ParseCollection(body []byte, kind ItemKind) ([]CollectionItem, error) {
	var doc xmlCollection
	if err := decodeRoot(body, "items", &doc); err != nil {
		return nil, &ParseError{Document: "collection", Err: err}
	}

	items := make([]CollectionItem, 0, len(doc.Items))
	for i, it := range doc.Items {
		id, err := strconv.Atoi(strings.TrimSpace(it.ObjectID))
		if err != nil {
			return nil, &ParseError{Document: "collection", Err: fmt.Errorf("item %d: invalid objectid %q", i, it.ObjectID)}
		}
		items = append(items, CollectionItem{
			ExternalID:    id,
			Kind:          kind,
			Name:          strings.TrimSpace(it.Name),
			YearPublished: optionalInt(it.YearPublished),
			ThumbnailURL:  optionalString(it.Thumbnail),
		})
	}
	return items, nil
}

// ParsePlays parses a <plays> document and its pagination attributes
func (p *XMLParser) ParsePlays(body []byte) (*PlaysPage, error) {
	var doc xmlPlays
	if err := decodeRoot(body, "plays", &doc); err != nil {
		return nil, &ParseError{Document: "plays", Err: err}
	}

	total, err := atoiDefault(doc.Total, 0)
	if err != nil {
		return nil, &ParseError{Document: "plays", Err: fmt.Errorf("invalid total %q", doc.Total)}
	}
	page, err := atoiDefault(doc.Page, 1)
	if err != nil {
		return nil, &ParseError{Document: "plays", Err: fmt.Errorf("invalid page %q", doc.Page)}
	}

	plays := make([]Play, 0, len(doc.Plays))
	for _, xp := range doc.Plays {
		play, err := convertPlay(xp)
		if err != nil {
			return nil, &ParseError{Document: "plays", Err: err}
		}
		plays = append(plays, play)
	}

	return &PlaysPage{
		Plays: plays,
		Meta:  PageMeta{TotalCount: total, PageNumber: page},
	}, nil
}

func convertPlay(xp xmlPlay) (Play, error) {
	id, err := strconv.Atoi(strings.TrimSpace(xp.ID))
	if err != nil {
		return Play{}, fmt.Errorf("invalid play id %q", xp.ID)
	}
	gameID, err := strconv.Atoi(strings.TrimSpace(xp.Item.ObjectID))
	if err != nil {
		return Play{}, fmt.Errorf("play %d: invalid objectid %q", id, xp.Item.ObjectID)
	}

	var date time.Time
	if d := strings.TrimSpace(xp.Date); d != "" && d != "0000-00-00" {
		date, err = time.Parse(playDateLayout, d)
		if err != nil {
			return Play{}, fmt.Errorf("play %d: invalid date %q", id, xp.Date)
		}
	}

	quantity, err := atoiDefault(xp.Quantity, 1)
	if err != nil {
		return Play{}, fmt.Errorf("play %d: invalid quantity %q", id, xp.Quantity)
	}

	players := make([]Player, 0, len(xp.Players))
	for _, pl := range xp.Players {
		players = append(players, Player{
			Name:          strings.TrimSpace(pl.Name),
			Username:      optionalString(pl.Username),
			UserID:        optionalPositiveInt(pl.UserID),
			StartPosition: optionalString(pl.StartPosition),
			Color:         optionalString(pl.Color),
			Score:         optionalString(pl.Score),
			Won:           pl.Win == "1",
		})
	}

	return Play{
		ExternalID:    id,
		Date:          date,
		Quantity:      quantity,
		LengthMinutes: optionalPositiveInt(xp.Length),
		Incomplete:    xp.Incomplete == "1",
		Location:      optionalString(xp.Location),
		GameID:        gameID,
		GameName:      strings.TrimSpace(xp.Item.Name),
		Comments:      optionalString(xp.Comments),
		Players:       players,
	}, nil
}

// decodeRoot decodes body into v when its root element is want. The
// upstream answers some failures with HTTP 200 and an <errors> or
// <message> document; those are reported with their text.
func decodeRoot(body []byte, want string, v any) error {
	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return errors.New("empty document")
		}
		if err != nil {
			return err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case want:
			return dec.DecodeElement(v, &start)
		case "errors":
			var doc xmlErrors
			if err := dec.DecodeElement(&doc, &start); err != nil {
				return err
			}
			msgs := make([]string, 0, len(doc.Errors))
			for _, e := range doc.Errors {
				msgs = append(msgs, strings.TrimSpace(e.Message))
			}
			return fmt.Errorf("upstream error: %s", strings.Join(msgs, "; "))
		case "error":
			var doc struct {
				Message string `xml:"message"`
			}
			if err := dec.DecodeElement(&doc, &start); err != nil {
				return err
			}
			return fmt.Errorf("upstream error: %s", strings.TrimSpace(doc.Message))
		case "message":
			var text string
			if err := dec.DecodeElement(&text, &start); err != nil {
				return err
			}
			return fmt.Errorf("upstream message: %s", strings.TrimSpace(text))
		default:
			return fmt.Errorf("unexpected root element <%s>, want <%s>", start.Name.Local, want)
		}
	}
}

func atoiDefault(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func optionalInt(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

// optionalPositiveInt treats zero as absent; the upstream writes 0 for
// unknown lengths and for players without an account.
func optionalPositiveInt(s string) *int {
	n := optionalInt(s)
	if n == nil || *n <= 0 {
		return nil
	}
	return n
}
