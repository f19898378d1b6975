package tokenizer

// SQL returns a tokenizer adding the two-character comparison operators
// (`!=`, `<=`, `>=`, `==`) ahead of the generic word pattern, and falling
// back to single non-word characters instead of punctuation runs, so
// `a<=b` tokenizes as `a`, `<=`, `b` rather than having the single-character
// fallback split it into `a`, `<`, `=`, `b`.
func SQL(opts ...Option) Tokenizer {
	base := append([]Option{
		withExtraPatterns(`!=`, `<=`, `>=`, `==`),
		withFallback(`\w+`, `\S`),
	}, opts...)
	return New(base...)
}

// Numeric returns a tokenizer that keeps every run of non-whitespace
// characters together as a single token (beyond the quoted-string
// alternatives), so `3.14` tokenizes as one token rather than `3`, `.`,
// `14`.
func Numeric(opts ...Option) Tokenizer {
	base := append([]Option{withFallback(`\S+`)}, opts...)
	return New(base...)
}
