package prefabs

import (
	"embed"

	"github.com/milk9111/dungeoncore/overlay"
)

//go:embed *.yaml
var PrefabsFS embed.FS

var files = overlay.Dir{Name: "prefabs", FS: PrefabsFS}

// Load returns the named prefab file. A copy under prefabs/ on disk wins.
func Load(name string) ([]byte, error) {
	return files.Read(name)
}
