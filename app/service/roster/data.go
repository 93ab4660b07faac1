package roster

// TimeWindow is a pair of free-text time strings as captured by one source.
// Either side may be absent.
type TimeWindow struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Agent is the read-only time context for one agent under review: the
// scheduled shift, the system-captured times, the phone-recorded times and
// the times the agent edited in (disputed).
type Agent struct {
	Name          string     `json:"name"`
	AgentID       string     `json:"agent_id"`
	Schedule      TimeWindow `json:"schedule"`
	System        TimeWindow `json:"system"`
	Phone         TimeWindow `json:"phone"`
	AgentDisputed TimeWindow `json:"agent_disputed"`
}

type rosterFile struct {
	Agents []Agent `json:"agents"`
}
