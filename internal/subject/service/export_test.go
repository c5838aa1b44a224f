package service

// SetHashPassword replaces the password hasher until the returned func runs.
func SetHashPassword(f func(password []byte, cost int) ([]byte, error)) (restore func()) {
	prev := hashPassword
	hashPassword = f
	return func() { hashPassword = prev }
}

// DummyHash returns the hash unknown-email logins compare against.
func (s *Service) DummyHash() []byte {
	return s.dummyHash
}
