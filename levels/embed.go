package levels

import (
	"embed"

	"github.com/milk9111/dungeoncore/overlay"
)

//go:embed dungeons/*.yaml scripts/*.tengo
var LevelsFS embed.FS

var files = overlay.Dir{Name: "levels", FS: LevelsFS}

// Load returns a level file, preferring the copy on disk under levels/.
func Load(name string) ([]byte, error) {
	return files.Read(name)
}
