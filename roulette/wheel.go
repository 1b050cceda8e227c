package roulette

import "math/rand/v2"

// Wheel produces spin outcomes.
type Wheel interface {
	Spin() Outcome
}

// RandomWheel draws the number and the color independently.
type RandomWheel struct{}

func (RandomWheel) Spin() Outcome {
	color := Red
	if rand.IntN(2) == 1 {
		color = Black
	}
	return Outcome{Number: rand.IntN(MaxNumber + 1), Color: color}
}
