package automation

// LockerSize expone el número de claves vivas del MutexLocker.
func LockerSize(l *MutexLocker) int { return l.size() }
