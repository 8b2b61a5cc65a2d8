package core

// service.go - service node activity tracking: a single per-address
// counter the block reward split ranks candidates by.

import "sort"

func serviceActivity(s *StateStore, addr Address) (uint64, error) {
	data, ok, err := s.Get(serviceActivityKey(addr))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	var n uint64
	for _, c := range data {
		n = n<<8 | uint64(c)
	}
	return n, nil
}

// bumpServiceActivity credits addr with one unit of service activity,
// called whenever a block-producing node records a service contribution
// (here: every block it did not itself produce but helped confirm).
func bumpServiceActivity(s *StateStore, b *Batch, addr Address) error {
	n, err := serviceActivity(s, addr)
	if err != nil {
		return err
	}
	b.Put(serviceActivityKey(addr), beUint64(n+1))
	return nil
}

// TopServiceNodes returns up to n addresses ranked by activity counter
// descending, ties broken by ascending address byte order for
// determinism.
func TopServiceNodes(s *StateStore, n int) ([]Address, error) {
	it := s.Iterator(serviceActivityPrefix())
	defer it.Release()

	type entry struct {
		addr  Address
		count uint64
	}
	var all []entry
	for it.Next() {
		var a Address
		copy(a[:], it.Key()[1:])
		var c uint64
		for _, x := range it.Value() {
			c = c<<8 | uint64(x)
		}
		all = append(all, entry{a, c})
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return string(all[i].addr[:]) < string(all[j].addr[:])
	})
	if len(all) > n {
		all = all[:n]
	}
	out := make([]Address, len(all))
	for i, e := range all {
		out[i] = e.addr
	}
	return out, nil
}
