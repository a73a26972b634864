package quiz

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"chorequest/internal/models"
)

// Question is a multiple-choice prompt. The ID is derived from its content so
// the same prompt always has the same ID.
type Question struct {
	ID         string              `json:"id"`
	Category   models.QuizCategory `json:"category"`
	Prompt     string              `json:"prompt"`
	Options    []string            `json:"options"`
	Answer     string              `json:"-"`
	Difficulty int                 `json:"difficulty"`
}

// QuestionID hashes the content that identifies a question
func QuestionID(category models.QuizCategory, prompt, answer string) string {
	sum := sha256.Sum256([]byte(string(category) + "|" + prompt + "|" + answer))
	return hex.EncodeToString(sum[:8])
}

// NewQuestion builds a question and its ID
func NewQuestion(category models.QuizCategory, prompt, answer string, options []string, difficulty int) Question {
	return Question{
		ID:         QuestionID(category, prompt, answer),
		Category:   category,
		Prompt:     prompt,
		Options:    options,
		Answer:     answer,
		Difficulty: difficulty,
	}
}

// Check compares an answer ignoring case and surrounding space
func (q Question) Check(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), q.Answer)
}

// Generate produces a question for the category at the given difficulty
func Generate(category models.QuizCategory, difficulty int, rng *rand.Rand) Question {
	if category == models.QuizEnglish {
		return spellingQuestion(difficulty, rng)
	}
	return mathQuestion(difficulty, rng)
}

func mathQuestion(difficulty int, rng *rand.Rand) Question {
	var a, b, result int
	var op string

	ops := []string{"+"}
	if difficulty > 3 {
		ops = append(ops, "-")
	}
	if difficulty > 6 {
		ops = append(ops, "×")
	}
	op = ops[rng.IntN(len(ops))]

	switch op {
	case "×":
		a = 2 + rng.IntN(difficulty+1)
		b = 2 + rng.IntN(difficulty+1)
		result = a * b
	case "-":
		limit := 5 + 5*difficulty
		a = 1 + rng.IntN(limit)
		b = 1 + rng.IntN(limit)
		if b > a {
			a, b = b, a
		}
		result = a - b
	default:
		limit := 5 + 5*difficulty
		a = 1 + rng.IntN(limit)
		b = 1 + rng.IntN(limit)
		result = a + b
	}

	answer := strconv.Itoa(result)
	options := []string{answer}
	seen := map[int]bool{result: true}
	for offset := 1; len(options) < 4; offset++ {
		for _, candidate := range []int{result + offset, result - offset} {
			if candidate < 0 || seen[candidate] || len(options) == 4 {
				continue
			}
			seen[candidate] = true
			options = append(options, strconv.Itoa(candidate))
		}
	}
	shuffle(options, rng)

	prompt := fmt.Sprintf("%d %s %d = ?", a, op, b)
	return NewQuestion(models.QuizMath, prompt, answer, options, difficulty)
}

type spelling struct {
	word  string
	wrong []string
}

// word bank by tier: 1 for easy, 2 for medium, 3 for hard
var wordBank = map[int][]spelling{
	1: {
		{"friend", []string{"freind", "frend", "friand"}},
		{"because", []string{"becuase", "becaus", "beacause"}},
		{"school", []string{"scool", "skool", "schol"}},
		{"people", []string{"peeple", "poeple", "pepole"}},
		{"house", []string{"hous", "howse", "houes"}},
	},
	2: {
		{"beautiful", []string{"beutiful", "beautifull", "beatiful"}},
		{"different", []string{"diffrent", "differant", "diferent"}},
		{"February", []string{"Febuary", "Februery", "Febrary"}},
		{"library", []string{"libary", "librery", "liberary"}},
		{"separate", []string{"seperate", "separete", "seprate"}},
	},
	3: {
		{"necessary", []string{"neccessary", "necesary", "neccesary"}},
		{"rhythm", []string{"rythm", "rhythym", "rhytm"}},
		{"conscience", []string{"concience", "conscence", "consciense"}},
		{"embarrass", []string{"embarass", "embarras", "embbarass"}},
		{"occurrence", []string{"occurence", "ocurrence", "occurrance"}},
	},
}

func spellingQuestion(difficulty int, rng *rand.Rand) Question {
	tier := 1
	if difficulty > 3 {
		tier = 2
	}
	if difficulty > 6 {
		tier = 3
	}
	words := wordBank[tier]
	entry := words[rng.IntN(len(words))]

	options := append([]string{entry.word}, entry.wrong...)
	shuffle(options, rng)

	prompt := "Which spelling is correct: " + strings.Join(sortedCopy(options), ", ") + "?"
	return NewQuestion(models.QuizEnglish, prompt, entry.word, options, difficulty)
}

func shuffle(items []string, rng *rand.Rand) {
	rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

// sortedCopy keeps the prompt text independent of option order
func sortedCopy(items []string) []string {
	out := slices.Clone(items)
	slices.Sort(out)
	return out
}
