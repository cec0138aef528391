package room

import "github.com/KirkDiggler/room-server/internal/entities"

// castLoop plays the room's ambient effect on its own ticker. It only rolls
// and broadcasts, so it never touches room state.
func (r *Room) castLoop(cast *entities.SpecialCast) {
	defer r.wg.Done()

	ticker := r.clock.NewTicker(r.castInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C():
			effect, err := r.roller.Roll(cast.Effects)
			if err != nil {
				r.logger.Warn("special cast roll failed", "error", err)
				continue
			}
			r.broadcast(r.castPacket(cast.Emitter, effect))
		}
	}
}
