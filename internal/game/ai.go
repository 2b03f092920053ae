package game

import "context"

// simulate presses random keys for a non-human player. It goes through
// KeyPressed like a human would and waits for room instead of spinning.
func (p *Player) simulate(ctx context.Context) {
	for ctx.Err() == nil {
		if err := p.actions.WaitForSpace(ctx); err != nil {
			return
		}
		if err := sleep(ctx, p.computerDelay); err != nil {
			return
		}
		p.KeyPressed(p.rng.Intn(p.board.Size()))
	}
}
