package events

// Dispatch runs a command against the replayed state and appends the
// resulting events to the store, returning the appended envelopes. When
// the command is rejected the store is untouched; events already appended
// by earlier commands in the same cycle are not rolled back.
//
// Dispatch does not fold the events into the state; the caller owns the
// state value and folds each appended event exactly once.
func Dispatch(state State, cmd Command, store *Store) ([]Envelope, error) {
	evts, err := HandleCommand(state, cmd)
	if err != nil {
		return nil, err
	}

	envelopes := make([]Envelope, 0, len(evts))
	for _, evt := range evts {
		env, err := store.Append(evt)
		if err != nil {
			return envelopes, err
		}
		envelopes = append(envelopes, env)
	}
	return envelopes, nil
}
