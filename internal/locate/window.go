package locate

// window is a fixed-capacity ring of the most recently seen words, used to
// recognise the header and trailer magic sequences while streaming.
type window struct {
	buf  [3]uint32
	size int // capacity, at most len(buf)
	head int // index of the oldest word
	n    int // words currently held
}

func newWindow(size int) window {
	if size < 1 || size > 3 {
		panic("locate: window size out of range")
	}
	return window{size: size}
}

// push appends v, evicting the oldest word when full.
func (w *window) push(v uint32) {
	if w.n < w.size {
		w.buf[(w.head+w.n)%w.size] = v
		w.n++
		return
	}
	w.buf[w.head] = v
	w.head = (w.head + 1) % w.size
}

// at returns the i-th oldest word.
func (w *window) at(i int) uint32 {
	return w.buf[(w.head+i)%w.size]
}

// last returns the newest word.
func (w *window) last() (uint32, bool) {
	if w.n == 0 {
		return 0, false
	}
	return w.at(w.n - 1), true
}

func (w *window) len() int { return w.n }

func (w *window) full() bool { return w.n == w.size }

func (w *window) reset() {
	w.head, w.n = 0, 0
}

// matches reports whether the window is full and holds pat, oldest first.
func (w *window) matches(pat []uint32) bool {
	if w.n != len(pat) {
		return false
	}
	for i, v := range pat {
		if w.at(i) != v {
			return false
		}
	}
	return true
}
