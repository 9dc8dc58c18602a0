package netsync

import "sort"

// DiffRoster compares the locally known ids against the server's entity list.
// remove holds ids only known locally, never including localID; request holds
// ids only the server knows. Both are sorted.
func DiffRoster(local, server []string, localID string) (remove, request []string) {
	serverSet := make(map[string]struct{}, len(server))
	for _, id := range server {
		serverSet[id] = struct{}{}
	}
	localSet := make(map[string]struct{}, len(local))
	for _, id := range local {
		localSet[id] = struct{}{}
		if id == localID {
			continue
		}
		if _, ok := serverSet[id]; !ok {
			remove = append(remove, id)
		}
	}
	for id := range serverSet {
		if id == "" || id == localID {
			continue
		}
		if _, ok := localSet[id]; !ok {
			request = append(request, id)
		}
	}
	sort.Strings(remove)
	sort.Strings(request)
	return remove, request
}
