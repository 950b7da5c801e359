// Package rio implements the line-oriented text protocol of the audio
// matrix controllers.
//
// Inbound lines start with a tag: S for a success response, E for an error
// and N for an unsolicited notification. Responses and notifications carry
// an address, an attribute and a value:
//
//	S C[1].Z[2].volume="25"
//	N C[1].Z[1].status="OFF"
//	S S[3].name="Tuner"
//	E Invalid Command
//
// Outbound commands are GET, SET, WATCH and EVENT, each terminated by a
// carriage return:
//
//	GET C[1].Z[2].volume
//	SET C[1].Z[2].bass="-2"
//	WATCH C[1].Z[2] ON
//	EVENT C[1].Z[2]!KeyRelease SelectSource 3
//
// A GET is correlated with its response by the addressed path and
// attribute through a PendingTable, so concurrent requests for different
// keys are matched correctly. Client wraps the table with a blocking Get.
package rio
