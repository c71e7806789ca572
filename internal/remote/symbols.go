package remote

import (
	"fmt"
	"strconv"
	"strings"
)

// Controller symbols consumed or produced by the alarm page.
const (
	AlarmList         = "GVL_LoadBank_Runtime.LB_Alarm_List"
	AlarmListCount    = "GVL_LoadBank_Runtime.LB_Alarm_List_Count"
	AlarmHistory      = "GVL_LoadBank_Runtime.LB_Alarm_History"
	AlarmHistoryCount = "GVL_LoadBank_Runtime.LB_Alarm_History_Count"

	CriticalCount   = "GVL_LoadBank_Runtime.LB_Critical_Alarm_Count"
	WarningCount    = "GVL_LoadBank_Runtime.LB_Warning_Count"
	UnackCount      = "GVL_LoadBank_Runtime.LB_Unacknowledged_Count"
	TotalAlarmCount = "GVL_LoadBank_Runtime.LB_Total_Alarm_Count"

	NewAlarmTrigger = "GVL_LoadBank_Runtime.LB_New_Alarm_Trigger"
	NewestAlarmID   = "GVL_LoadBank_Runtime.LB_Newest_Alarm_ID"
	NewestAlarmName = "GVL_LoadBank_Runtime.LB_Newest_Alarm_Name"

	AlarmAck          = "GVL_LoadBank_Runtime.HMI_Alarm_Acknowledge"
	AlarmAckAll       = "GVL_LoadBank_Runtime.HMI_Alarm_Acknowledge_All"
	AlarmClearHistory = "GVL_LoadBank_Runtime.HMI_Alarm_Clear_History"
	ResetCmd          = "GVL_LoadBank_Runtime.HMI_Reset_Cmd"
)

// Indexed addresses element index (1-based) of an array variable.
func Indexed(base string, index int) string {
	return fmt.Sprintf("%s[%d]", base, index)
}

// SplitIndexed is the inverse of Indexed. ok is false for scalar names.
func SplitIndexed(name string) (base string, index int, ok bool) {
	open := strings.LastIndexByte(name, '[')
	if open <= 0 || !strings.HasSuffix(name, "]") {
		return name, 0, false
	}

	index, err := strconv.Atoi(name[open+1 : len(name)-1])
	if err != nil {
		return name, 0, false
	}

	return name[:open], index, true
}
