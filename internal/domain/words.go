package domain

// WordPair is the pair handed out for one round: everyone but the impostor
// receives Team, the impostor receives Intruder.
type WordPair struct {
	Team     string `json:"teamWord"`
	Intruder string `json:"intruderWord"`
}

// Randomizer picks uniformly random indexes in [0, n)
type Randomizer interface {
	Intn(n int) int
}

// pickPair returns a uniformly random pair from pairs
func pickPair(pairs []WordPair, rnd Randomizer) (WordPair, error) {
	if len(pairs) == 0 {
		return WordPair{}, ErrNoWordPairs
	}
	return pairs[rnd.Intn(len(pairs))], nil
}
