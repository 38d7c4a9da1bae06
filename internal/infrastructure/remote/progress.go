package remote

import "io"

// progressReader reports upload progress as a 0..100 percentage while the
// request body is consumed. Emitted values are clamped and strictly
// increasing, so the task store never sees progress move backwards.
type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	last  int
	emit  func(percent int)
}

func newProgressReader(r io.Reader, total int64, emit func(int)) *progressReader {
	return &progressReader{r: r, total: total, emit: emit}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		p.report()
	}
	if err == io.EOF {
		// Short bodies and unknown sizes still land on 100 at the end.
		p.force(100)
	}
	return n, err
}

func (p *progressReader) report() {
	if p.total <= 0 {
		return
	}
	pct := int(p.read * 100 / p.total)
	if pct > 100 {
		pct = 100
	}
	p.force(pct)
}

func (p *progressReader) force(pct int) {
	if p.emit == nil || pct <= p.last {
		return
	}
	p.last = pct
	p.emit(pct)
}
