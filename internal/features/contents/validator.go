package contents

// IsValidType reports whether t names a reviewable content type
func IsValidType(t string) bool {
	switch t {
	case TypeKnowledge, TypePersona:
		return true
	}
	return false
}
