package app

// MinPlayersToStartSession defines the minimum number of occupied seats required to start a session.
// Keep this centralized so tests or local runs can adjust the rule without touching multiple call sites.
const MinPlayersToStartSession = 3
