package view

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// imageFileTypes restricts the file picker to the formats the loader accepts.
var imageFileTypes = []FileType{
	{TypeName: "Image Files", Extensions: []string{".png", ".jpg", ".jpeg"}},
}

// ShowError shows a modal error box and returns once it is dismissed.
func (rv *RootView) ShowError(title, msg string) {
	if rv != nil && rv.logger != nil {
		rv.logger.Debug("error dialog", "title", title, "message", msg)
	}
	MessageBox(Icon("error"), Title(title), Msg(msg), Parent(App))
}

// AskImagePath opens the native file picker. It reports false when the
// user cancels.
func (rv *RootView) AskImagePath() (string, bool) {
	files := GetOpenFile(Title("Select image"), Filetypes(imageFileTypes), Parent(App))
	if len(files) == 0 || files[0] == "" {
		return "", false
	}
	return files[0], true
}
