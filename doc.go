// Package prefdeck is a declarative, toolkit-independent preferences model.
//
// An application declares its settings as a tree of categories, each holding
// typed settings (bool, int, float, text, string list, selection,
// multi-selection, color, file path), and hands the tree to Preferences
// together with a storage handler. The library computes breadcrumb paths,
// loads persisted values, records every edit in a linear undo/redo log, and
// filters the tree against live search queries. A presentation layer
// subscribes to change notifications and pushes edits back through the
// settings; no rendering concern lives here.
//
//	general := model.NewCategory("General",
//		model.NewBool("Dark Mode", false),
//		model.NewInt("Font Size", 12).WithValidators(validate.Between(6, 40)),
//	)
//
//	store, err := storage.NewJSONFile(path)
//	if err != nil { ... }
//
//	prefs, err := prefdeck.New(store, general)
//	if err != nil { ... }
//
//	s, _ := prefs.Setting("General#Dark Mode")
//	_ = s.SetValue(true) // validated, recorded, notified, persisted
//	_ = prefs.Undo()
package prefdeck
