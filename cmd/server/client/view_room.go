package client

import (
	"fmt"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/KirkDiggler/room-server/internal/room/occupants"
)

var refreshEvery time.Duration

var viewRoomCmd = &cobra.Command{
	Use:   "view-room [room-id]",
	Short: "Watch a loaded room in the terminal",
	Long:  `Draws the room's floor and occupants and redraws it on an interval. Press r to refresh, q or Esc to quit.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runViewRoom,
}

func init() {
	viewRoomCmd.Flags().DurationVar(&refreshEvery, "refresh", 2*time.Second, "Redraw interval")
}

// gridTop is the first screen row of the floor
const gridTop = 2

var (
	styleTitle    = tcell.StyleDefault.Bold(true)
	styleFloor    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleUser     = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleBot      = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleFooter   = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleErrorMsg = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

func runViewRoom(_ *cobra.Command, args []string) error {
	resp, err := fetchRoom(args[0])
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to init terminal: %w", err)
	}
	defer screen.Fini()

	drawRoom(screen, resp.AsMap())

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(refreshEvery)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
			}
		}
	}()

	for {
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				return nil
			}
			if ev.Rune() == 'r' {
				redraw(screen, args[0])
			}
		case *tcell.EventInterrupt:
			redraw(screen, args[0])
		case *tcell.EventResize:
			screen.Sync()
		case nil:
			return nil
		}
	}
}

func redraw(screen tcell.Screen, roomID string) {
	resp, err := fetchRoom(roomID)
	if err != nil {
		screen.Clear()
		drawText(screen, 0, 0, styleErrorMsg, err.Error())
		screen.Show()
		return
	}
	drawRoom(screen, resp.AsMap())
}

// drawRoom renders an admin GetRoom response: a title line, the floor rows
// with occupants on top, and a legend under the floor.
func drawRoom(screen tcell.Screen, room map[string]interface{}) {
	screen.Clear()

	drawText(screen, 0, 0, styleTitle, fmt.Sprintf("%s  users %d  peak %d",
		str(room, "name"), num(room, "users"), num(room, "peak")))

	rows, _ := room["rows"].([]interface{})
	for y, entry := range rows {
		row, _ := entry.(string)
		for x, c := range row {
			if c == 'x' || c == 'X' {
				continue
			}
			screen.SetContent(x, gridTop+y, '.', nil, styleFloor)
		}
	}

	list, _ := room["occupants"].([]interface{})
	for _, entry := range list {
		o, _ := entry.(map[string]interface{})
		style := styleUser
		if str(o, "type") == occupants.EntityTypeBot {
			style = styleBot
		}
		screen.SetContent(num(o, "x"), gridTop+num(o, "y"), marker(str(o, "name")), nil, style)
	}

	drawText(screen, 0, gridTop+len(rows)+1, styleFooter, "r refresh  q quit")
	screen.Show()
}

func marker(name string) rune {
	for _, r := range name {
		return unicode.ToUpper(r)
	}
	return '@'
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		screen.SetContent(x+i, y, r, nil, style)
	}
}
