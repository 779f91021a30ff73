// Пакет ui — встроенный веб-интерфейс vidgrab.
// HTML, CSS и JS встраиваются в бинарник через //go:embed и раздаются
// с корня сервера.
package ui

import (
	"embed"
	"io/fs"
	"net/http"
)

// content — встроенная файловая система с ассетами интерфейса.
//
//go:embed assets
var content embed.FS

// Handler возвращает http.Handler, раздающий интерфейс с корня.
// / → assets/index.html, остальные пути — как есть из assets/.
func Handler() http.Handler {
	sub, err := fs.Sub(content, "assets")
	if err != nil {
		// //go:embed гарантирует наличие каталога assets
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
