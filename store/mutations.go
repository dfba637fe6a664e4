package store

// Action is an externally invoked state-change request
type Action string

// Mutation is the single state change an Action commits
type Mutation string

const (
	ActionAddUser       Action = "ADD_USER"
	ActionSetLoggedIn   Action = "SET_LOGGED_IN"
	ActionLogout        Action = "LOGOUT"
	ActionAcceptImprove Action = "ACCEPT_IMPROVE"
	ActionAddScenario   Action = "ADD_SCENARIO"
)

const (
	MutationSetUser       Mutation = "SET_USER"
	MutationSetLogin      Mutation = "SET_LOGIN"
	MutationSetLogout     Mutation = "SET_LOGOUT"
	MutationAcceptImprove Mutation = "ACCEPT_IMPROVE"
	MutationSetScenario   Mutation = "SET_SCENARIO"
)

// actionMutations is the 1:1 table of actions to the mutation each commits
var actionMutations = map[Action]Mutation{
	ActionAddUser:       MutationSetUser,
	ActionSetLoggedIn:   MutationSetLogin,
	ActionLogout:        MutationSetLogout,
	ActionAcceptImprove: MutationAcceptImprove,
	ActionAddScenario:   MutationSetScenario,
}

// MutationFor returns the mutation committed by action
func MutationFor(action Action) (Mutation, bool) {
	m, ok := actionMutations[action]
	return m, ok
}
