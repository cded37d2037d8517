package writer

// MemWriter captures image bytes in memory.
type MemWriter struct {
	Buf    []byte
	Writes int
}

// WriteImage stores a copy of buf, replacing any earlier image.
func (w *MemWriter) WriteImage(buf []byte) error {
	w.Buf = append(w.Buf[:0], buf...)
	w.Writes++
	return nil
}
