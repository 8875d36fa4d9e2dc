package game

import "math/rand"

// Word pools for the pick-word phase. Every word is lower case and
// singular unless it only exists in plural (grapes, shorts). Easy words
// should have an emoji-grade drawing; hard words are harder to draw and
// guess but not impossible.

var easyWords = []string{
	// general animals
	"cat",
	"bat",
	"ant",
	"horse",
	"rabbit",
	"sheep",
	"monkey",

	// sports
	"soccer",
	"football",
	"baseball",
	"tennis",

	// objects
	"pencil",
	"brush",
	"notebook",

	// clothes
	"sock",
	"pants",
	"shirt",
	"shorts",
	"tuxedo",
	"suit",

	// tools
	"hammer",
	"screwdriver",
	"ruler",
	"compass",

	// kitchen objects
	"oven",
	"spoon",
	"fork",
	"knife",
	"pan",
	"pot",

	// buildings
	"house",
	"shack",
	"mansion",
	"skyscraper",

	// building objects
	"window",
	"door",
	"staircase",
	"basement",
	"attic",

	// fruit
	"grapes",
	"orange",
	"banana",
	"pineapple",
	"blueberry",
	"raspberry",
	"watermelon",
	"cherry",

	// vegetables
	"tomato",
	"potato",
	"cucumber",
	"mushroom",

	// professions
	"policeman",
	"firefighter",

	// countries
	"united states",
	"canada",
	"mexico",

	// emojis
	"heart",
	"fire",
	"skull",
}

var hardWords = []string{
	// animals
	"pelican",
	"orangutan",

	// professions
	"accountant",
}

// PickWordPair draws one easy and one hard word for a round's chooser.
func PickWordPair(rng *rand.Rand) (easy, hard string) {
	return easyWords[rng.Intn(len(easyWords))], hardWords[rng.Intn(len(hardWords))]
}

func IsEasyWord(w string) bool {
	for _, e := range easyWords {
		if e == w {
			return true
		}
	}
	return false
}

func IsHardWord(w string) bool {
	for _, h := range hardWords {
		if h == w {
			return true
		}
	}
	return false
}
