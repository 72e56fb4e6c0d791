/*
Package suggest implements inline word completion for a text input.

A Controller watches key events. When the text before the caret, with the
typed key applied, ends in a token matching the trigger pattern, it asks a
Loader for candidates and replaces the buffer with the first one: the typed
part stays, the remainder is inserted after the caret and selected.

	ctrl, err := suggest.New(loader, suggest.WithPattern(`\w+`))
	ctrl.Init(host)
	state, ok := ctrl.HandleKey("he", "", "", suggest.KeyEvent{Key: "l"})
	// state == {Value: "hello", SelectionStart: 3, SelectionEnd: 5}

While a suggestion is shown the prev/next keys cycle through the
candidates, accept keeps the suggestion and moves the caret after it, and
cancel removes the selected remainder. Other keys are left to the host.

Loaders may answer immediately or hand back a pending Result. Pending
results are delivered through Host.Schedule on the host's event goroutine
and pushed with Host.PushState. A newer key always aborts the outstanding
request, and late results of aborted requests are dropped.

Offsets in State count runes, not bytes.
*/
package suggest
