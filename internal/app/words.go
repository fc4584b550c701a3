package app

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"impostor/internal/domain"
)

// DefaultWordPairs is the built-in list of (team, intruder) pairs.
// Pairs are close enough that the impostor can bluff for a while.
var DefaultWordPairs = []domain.WordPair{
	// Food & Drinks
	{Team: "coffee", Intruder: "tea"},
	{Team: "pizza", Intruder: "burger"},
	{Team: "sushi", Intruder: "ramen"},
	{Team: "chocolate", Intruder: "vanilla"},
	{Team: "wine", Intruder: "beer"},
	{Team: "croissant", Intruder: "baguette"},
	{Team: "honey", Intruder: "jam"},
	{Team: "cheese", Intruder: "butter"},

	// Animals
	{Team: "cat", Intruder: "dog"},
	{Team: "tiger", Intruder: "lion"},
	{Team: "dolphin", Intruder: "shark"},
	{Team: "falcon", Intruder: "eagle"},
	{Team: "wolf", Intruder: "fox"},
	{Team: "spider", Intruder: "scorpion"},

	// Places
	{Team: "beach", Intruder: "pool"},
	{Team: "subway", Intruder: "bus"},
	{Team: "library", Intruder: "bookstore"},
	{Team: "hospital", Intruder: "pharmacy"},
	{Team: "castle", Intruder: "palace"},
	{Team: "stadium", Intruder: "arena"},

	// Objects
	{Team: "guitar", Intruder: "violin"},
	{Team: "umbrella", Intruder: "raincoat"},
	{Team: "keyboard", Intruder: "piano"},
	{Team: "compass", Intruder: "map"},
	{Team: "lantern", Intruder: "candle"},
	{Team: "mirror", Intruder: "window"},
	{Team: "helmet", Intruder: "hat"},

	// Nature
	{Team: "volcano", Intruder: "mountain"},
	{Team: "thunder", Intruder: "lightning"},
	{Team: "glacier", Intruder: "iceberg"},
	{Team: "river", Intruder: "lake"},
	{Team: "sun", Intruder: "moon"},

	// Activities
	{Team: "football", Intruder: "rugby"},
	{Team: "skiing", Intruder: "snowboarding"},
	{Team: "chess", Intruder: "checkers"},
	{Team: "painting", Intruder: "drawing"},
	{Team: "cinema", Intruder: "theater"},
}

// LoadWordPairs reads pairs from a CSV file
func LoadWordPairs(path string) ([]domain.WordPair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word pairs %s: %w", path, err)
	}
	defer f.Close()

	return ReadWordPairs(f)
}

// ReadWordPairs parses "team,intruder" records. Blank fields, identical
// words and lines starting with # are skipped.
func ReadWordPairs(r io.Reader) ([]domain.WordPair, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var pairs []domain.WordPair
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse word pairs: %w", err)
		}
		if len(record) < 2 {
			continue
		}

		team, intruder := strings.TrimSpace(record[0]), strings.TrimSpace(record[1])
		if team == "" || intruder == "" || strings.EqualFold(team, intruder) {
			continue
		}
		pairs = append(pairs, domain.WordPair{Team: team, Intruder: intruder})
	}

	if len(pairs) == 0 {
		return nil, domain.ErrNoWordPairs
	}
	return pairs, nil
}
