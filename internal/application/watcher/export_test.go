package watcher

import "time"

func (w *Watcher) SetClock(now func() time.Time) { w.now = now }
