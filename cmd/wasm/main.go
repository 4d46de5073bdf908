//go:build js && wasm

package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/quillpad/gopad/internal/store"
	"github.com/quillpad/gopad/pkg/highlight"
)

// Version info
const Version = "1.0.0"

// storageKey is the fixed localStorage slot holding the database snapshot.
const storageKey = "app-database"

var db *store.SQLiteStore

func main() {
	fmt.Println("[GoPad] WASM Ready v" + Version)

	js.Global().Set("GoPad", js.ValueOf(map[string]interface{}{
		"version": js.FuncOf(getVersion),
		"open":    js.FuncOf(open),
		// Notes
		"listNotes":          js.FuncOf(listNotes),
		"addNote":            js.FuncOf(addNote),
		"updateNoteStatus":   js.FuncOf(updateNoteStatus),
		"notePreviousStatus": js.FuncOf(notePreviousStatus),
		"updateNoteContent":  js.FuncOf(updateNoteContent),
		"deleteNote":         js.FuncOf(deleteNote),
		"toggleFavorite":     js.FuncOf(toggleFavorite),
		"listFavorites":      js.FuncOf(listFavorites),
		"searchNotes":        js.FuncOf(searchNotes),
		"searchHighlights":   js.FuncOf(searchHighlights),
		// Settings
		"getSetting": js.FuncOf(getSetting),
		"setSetting": js.FuncOf(setSetting),
		// Text options
		"listOptions":  js.FuncOf(listOptions),
		"addOption":    js.FuncOf(addOption),
		"seedDefaults": js.FuncOf(seedDefaults),
		// Assets
		"storeAsset": js.FuncOf(storeAsset),
		"getAsset":   js.FuncOf(getAsset),
		"listAssets": js.FuncOf(listAssets),
		"seedAssets": js.FuncOf(seedAssets),
		// Snapshot (for OPFS-style sync beyond the localStorage mirror)
		"exportSnapshot": js.FuncOf(exportSnapshot),
		"importSnapshot": js.FuncOf(importSnapshot),
	}))

	select {}
}

// localStoragePersister mirrors snapshots into window.localStorage.
type localStoragePersister struct {
	key string
}

func (p *localStoragePersister) Load() (data []byte, ok bool, err error) {
	defer catch(&err)
	v := js.Global().Get("localStorage").Call("getItem", p.key)
	if v.IsNull() || v.IsUndefined() {
		return nil, false, nil
	}
	return []byte(v.String()), true, nil
}

func (p *localStoragePersister) Save(data []byte) (err error) {
	// setItem throws on quota exhaustion; surface that as an error so the
	// store can log it instead of crashing the wasm instance.
	defer catch(&err)
	js.Global().Get("localStorage").Call("setItem", p.key, string(data))
	return nil
}

// catch converts a JS exception panic into an error.
func catch(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("localStorage: %v", r)
	}
}

func errorResult(msg string) interface{} {
	result := map[string]interface{}{
		"error": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}

func successResult(msg string) interface{} {
	result := map[string]interface{}{
		"success": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}

func jsonResult(v interface{}) interface{} {
	bytes, err := json.Marshal(v)
	if err != nil {
		return errorResult("marshal result: " + err.Error())
	}
	return string(bytes)
}

// getVersion returns the module version
func getVersion(this js.Value, args []js.Value) interface{} {
	return Version
}

// open initializes the store with the localStorage-backed mirror.
// Safe to call again: the previous handle is closed first.
func open(this js.Value, args []js.Value) interface{} {
	if db != nil {
		db.Close()
	}

	var err error
	db, err = store.Open(store.Config{
		Persister: &localStoragePersister{key: storageKey},
	})
	if err != nil {
		return errorResult("failed to open store: " + err.Error())
	}

	fmt.Println("[GoPad] Store opened")
	return successResult("store opened")
}

// listNotes: [status string]
func listNotes(this js.Value, args []js.Value) interface{} {
	if db == nil {
		return errorResult("store not opened")
	}
	if len(args) < 1 {
		return errorResult("listNotes requires 1 arg: status")
	}

	notes, err := db.ListNotes(store.Status(args[0].String()))
	if err != nil {
		return errorResult("list notes: " + err.Error())
	}
	if notes == nil {
		notes = []*store.Note{}
	}
	return jsonResult(notes)
}

// addNote: [content string, status string] -> {"id": n}
func addNote(this js.Value, args []js.Value) interface{} {
	if db == nil {
		return errorResult("store not opened")
	}
	if len(args) < 2 {
		return errorResult("addNote requires 2 args: content, status")
	}

	id, err := db.AddNote(args[0].String(), store.Status(args[1].String()))
	if err != nil {
		return errorResult("add note: " + err.Error())
	}
	return jsonResult(map[string]int64{"id": id})
}

// updateNoteStatus: [id int, status string]
func updateNoteStatus(this js.Value, args []js.Value) interface{} {
	if db == nil {
		return errorResult("store not opened")
	}
	if len(args) < 2 {
		return errorResult("updateNoteStatus requires 2 args: id, status")
	}

	if err := db.UpdateNoteStatus(int64(args[0].Int()), store.Status(args[1].String())); err != nil {
		return errorResult("update note status: " + err.Error())
	}
	return successResult("status updated")
}

// notePreviousStatus: [id int] -> {"status": s}
func notePreviousStatus(this js.Value, args []js.Value) interface{} {
	if db == nil {
		return errorResult("store not opened")
	}
	if len(args) < 1 {
		return errorResult("notePreviousStatus requires 1 arg: id")
	}

	prev, err := db.NotePreviousStatus(int64(args[0].Int()))
	if err != nil {
		return errorResult("note previous status: " + err.Error())
	}
	return jsonResult(map[string]store.Status{"status": prev})
}

// updateNoteContent: [id int, content string]
func updateNoteContent(this js.Value, args []js.Value) interface{} {
	if db == nil {
		return errorResult("store not opened")
	}
	if len(args) < 2 {
		return errorResult("updateNoteContent requires 2 args: id, content")
	}

	if err := db.UpdateNoteContent(int64(args[0].Int()), args[1].String()); err != nil {
		return errorResult("update note content: " + err.Error())
	}
	return successResult("content updated")
}

// deleteNote: [id int]
func deleteNote(this js.Value, args []js.Value) interface{} {
	if db == nil {
		return errorResult("store not opened")
	}
	if len(args) < 1 {
		return errorResult("deleteNote requires 1 arg: id")
	}

	if err := db.DeleteNote(int64(args[0].Int())); err != nil {
		return errorResult("delete note: " + err.Error())
	}
	return successResult("note deleted")
}

// toggleFavorite: [id int]
func toggleFavorite(this js.Value, args []js.Value) interface{} {
	if db == nil {
		return errorResult("store not opened")
	}
	if len(args) < 1 {
		return errorResult("toggleFavorite requires 1 arg: id")
	}

	if err := db.ToggleFavorite(int64(args[0].Int())); err != nil {
		return errorResult("toggle favorite: " + err.Error())
	}
	return successResult("favorite toggled")
}

// listFavorites: []
func listFavorites(this js.Value, args []js.Value) interface{} {
	if db == nil {
		return errorResult("store not opened")
	}

	notes, err := db.ListFavorites()
	if err != nil {
		return errorResult("list favorites: " + err.Error())
	}
	if notes == nil {
		notes = []*store.Note{}
	}
	return jsonResult(notes)
}

// searchNotes: [term string, status string (optional, "" for all)]
func searchNotes(this js.Value, args []js.Value) interface{} {
	if db == nil {
		return errorResult("store not opened")
	}
	if len(args) < 1 {
		return errorResult("searchNotes requires 1+ args: term, [status]")
	}

	var status store.Status
	if len(args) > 1 {
		status = store.Status(args[1].String())
	}
	return jsonResult(db.SearchNotes(args[0].String(), status))
}

// searchHighlights: [term string, content string] -> spans with rune offsets
func searchHighlights(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("searchHighlights requires 2 args: term, content")
	}

	h, err := highlight.New(args[0].String())
	if err != nil {
		return errorResult("compile highlighter: " + err.Error())
	}

	spans := h.Spans(args[1].String())
	if spans == nil {
		spans = []highlight.Span{}
	}
	return jsonResult(spans)
}

// getSetting: [key string] -> {"value": v}
func getSetting(this js.Value, args []js.Value) interface{} {
	if db == nil {
		return errorResult("store not opened")
	}
	if len(args) < 1 {
		return errorResult("getSetting requires 1 arg: key")
	}
	return jsonResult(map[string]string{"value": db.Setting(args[0].String())})
}

// setSetting: [key string, value string]
func setSetting(this js.Value, args []js.Value) interface{} {
	if db == nil {
		return errorResult("store not opened")
	}
	if len(args) < 2 {
		return errorResult("setSetting requires 2 args: key, value")
	}

	if err := db.SetSetting(args[0].String(), args[1].String()); err != nil {
		return errorResult("set setting: " + err.Error())
	}
	return successResult("setting saved")
}

// listOptions: [type string]
func listOptions(this js.Value, args []js.Value) interface{} {
	if db == nil {
		return errorResult("store not opened")
	}
	if len(args) < 1 {
		return errorResult("listOptions requires 1 arg: type")
	}

	options, err := db.ListOptions(args[0].String())
	if err != nil {
		return errorResult("list options: " + err.Error())
	}
	if options == nil {
		options = []*store.TextOption{}
	}
	return jsonResult(options)
}

// addOption: [optionJSON string]
func addOption(this js.Value, args []js.Value) interface{} {
	if db == nil {
		return errorResult("store not opened")
	}
	if len(args) < 1 {
		return errorResult("addOption requires 1 arg: optionJSON")
	}

	var opt store.TextOption
	if err := json.Unmarshal([]byte(args[0].String()), &opt); err != nil {
		return errorResult("option json: " + err.Error())
	}

	if err := db.AddOption(&opt); err != nil {
		return errorResult("add option: " + err.Error())
	}
	return jsonResult(map[string]int64{"id": opt.ID})
}

// seedDefaults: []
func seedDefaults(this js.Value, args []js.Value) interface{} {
	if db == nil {
		return errorResult("store not opened")
	}

	if err := db.SeedDefaults(); err != nil {
		return errorResult("seed defaults: " + err.Error())
	}
	return successResult("defaults seeded")
}

// storeAsset: [name string, type string, content string]
func storeAsset(this js.Value, args []js.Value) interface{} {
	if db == nil {
		return errorResult("store not opened")
	}
	if len(args) < 3 {
		return errorResult("storeAsset requires 3 args: name, type, content")
	}

	if err := db.StoreAsset(args[0].String(), args[1].String(), args[2].String()); err != nil {
		return errorResult("store asset: " + err.Error())
	}
	return successResult("asset stored")
}

// getAsset: [name string] -> asset or null
func getAsset(this js.Value, args []js.Value) interface{} {
	if db == nil {
		return errorResult("store not opened")
	}
	if len(args) < 1 {
		return errorResult("getAsset requires 1 arg: name")
	}

	asset := db.Asset(args[0].String())
	if asset == nil {
		return "null"
	}
	return jsonResult(asset)
}

// listAssets: []
func listAssets(this js.Value, args []js.Value) interface{} {
	if db == nil {
		return errorResult("store not opened")
	}

	assets, err := db.ListAssets()
	if err != nil {
		return errorResult("list assets: " + err.Error())
	}
	if assets == nil {
		assets = []*store.Asset{}
	}
	return jsonResult(assets)
}

// seedAssets: []
func seedAssets(this js.Value, args []js.Value) interface{} {
	if db == nil {
		return errorResult("store not opened")
	}

	if err := db.SeedAssetsIfEmpty(); err != nil {
		return errorResult("seed assets: " + err.Error())
	}
	return successResult("assets seeded")
}

// exportSnapshot: [] -> Uint8Array
func exportSnapshot(this js.Value, args []js.Value) interface{} {
	if db == nil {
		return errorResult("store not opened")
	}

	data, err := db.Export()
	if err != nil {
		return errorResult("export failed: " + err.Error())
	}

	jsArray := js.Global().Get("Uint8Array").New(len(data))
	js.CopyBytesToJS(jsArray, data)
	return jsArray
}

// importSnapshot: [data Uint8Array]
func importSnapshot(this js.Value, args []js.Value) interface{} {
	if db == nil {
		return errorResult("store not opened")
	}
	if len(args) < 1 {
		return errorResult("importSnapshot requires 1 arg: data (Uint8Array)")
	}

	jsArray := args[0]
	data := make([]byte, jsArray.Get("length").Int())
	js.CopyBytesToGo(data, jsArray)

	if err := db.Import(data); err != nil {
		return errorResult("import failed: " + err.Error())
	}
	return successResult(fmt.Sprintf("imported %d bytes", len(data)))
}
